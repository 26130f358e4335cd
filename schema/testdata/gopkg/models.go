package models

import "time"

// Command is a process invocation.
//
//derive:Builder,CustomDebug
type Command struct {
	Executable string
	Args       []string `derive:"builder(each = \"arg\")"`
	Env        []string `derive:"builder(each = \"env\")"`
	CurrentDir *string
	Timeout    time.Duration
	internal   int
}

// Wrapper is generic.
//
//derive:CustomDebug
//derive:attr debug(bound = "T: ::std::fmt::Display")
type Wrapper[T any] struct {
	//derive:attr debug = "{:>8}"
	Value T
	Type  string `rusttype:"u8"`
	Skip  func() `rusttype:"-"`
	Bits  uint8  `derive:"debug = \"0b{:08b}\"; debug(bound = \"u8: Copy\")"`
}

type Unmarked struct {
	Name string
}
