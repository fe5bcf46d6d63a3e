package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace    bool // set by cmd/gbemu -trace; stored only, Machine produces no trace output
	LimitFPS bool // stored only; neither Machine nor the ebiten host reads it
}
