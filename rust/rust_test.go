package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"type", "r#type"},
		{"r#type", "r#type"},
		{"async", "r#async"},
		{"self", "self"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ident(tt.in), tt.in)
	}
	assert.Equal(t, "type", Unraw("r#type"))
	assert.True(t, IsKeyword("Self"))
	assert.False(t, IsKeyword("value"))
	assert.True(t, IsReserved("super"))
	assert.False(t, IsReserved("type"))
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CurrentDir", "current_dir"},
		{"HTTPSProxy", "https_proxy"},
		{"userID", "user_id"},
		{"already_snake", "already_snake"},
		{"Env", "env"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SnakeCase(tt.in), tt.in)
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"0b{:08b}"`, Quote("0b{:08b}"))
	assert.Equal(t, `"say \"hi\"\n"`, Quote("say \"hi\"\n"))
	assert.Equal(t, `"C:\\dir"`, Quote(`C:\dir`))
	assert.Equal(t, `"bell\u{7}"`, Quote("bell\a"))
	assert.Equal(t, `"ünï"`, Quote("ünï"))
}

func TestLineComment(t *testing.T) {
	assert.Equal(t, "// a\n//\n// b", LineComment("a\n\nb\n"))
}

func TestWriter(t *testing.T) {
	var w Writer
	w.Open("impl %s", "Command")
	w.Line("fn build(&mut self) -> u8")
	w.Indent()
	w.Line("where")
	w.Dedent()
	w.Close("")
	w.Blank()

	want := "impl Command {\n" +
		"    fn build(&mut self) -> u8\n" +
		"        where\n" +
		"}\n" +
		"\n"
	assert.Equal(t, want, w.String())
}

func TestOpenWhere(t *testing.T) {
	var w Writer
	w.OpenWhere("impl<T> Field<T>", []string{"T: ::std::fmt::Debug"})
	w.Line("x")
	w.Close("")
	w.OpenWhere("impl Plain", nil)
	w.Close("")

	want := "impl<T> Field<T>\n" +
		"where\n" +
		"    T: ::std::fmt::Debug,\n" +
		"{\n" +
		"    x\n" +
		"}\n" +
		"impl Plain {\n" +
		"}\n"
	assert.Equal(t, want, w.String())
}
