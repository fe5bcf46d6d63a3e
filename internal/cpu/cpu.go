// Package cpu implements the Sharp SM83 fetch-decode-execute loop: the full
// base and 0xCB-prefixed opcode tables, register file, and flag ALU.
package cpu

import "fmt"

// Bus is the memory-mapped surface the CPU drives. internal/bus.Bus
// satisfies this; tests may substitute a smaller fake.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
	// Tick advances timers/PPU by the given number of CPU cycles.
	Tick(cycles int)
}

// TrapError is returned by Step when the fetched byte decodes to neither the
// base nor the CB-prefixed opcode table. The machine is left inert: PC still
// points at the offending opcode and no further state is mutated.
type TrapError struct {
	PC         uint16 // address the opcode was fetched from
	Opcode     byte
	CBPrefixed bool
}

func (e *TrapError) Error() string {
	if e.CBPrefixed {
		return fmt.Sprintf("unknown opcode 0xCB 0x%02X at PC=0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("unknown opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// CPU is the SM83 register file plus execution state.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME       bool
	halted    bool
	eiPending bool

	// Trap holds the error from the most recent faulting Step; once set the
	// CPU stops executing (Step becomes a no-op returning 0 cycles).
	Trap error

	bus Bus
}

// New creates a CPU wired to bus b. Registers start zeroed (PC=0, SP=0);
// callers running without a boot ROM should call ResetNoBoot.
func New(b Bus) *CPU {
	return &CPU{bus: b}
}

// SetPC allows tests or a boot stub to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Bus exposes the underlying bus for tests/tools.
func (c *CPU) Bus() Bus { return c.bus }

// Halted reports whether the CPU is in HALT awaiting an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// ResetNoBoot sets registers to the documented DMG post-boot state, for
// running cartridges without a boot ROM image.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.halted = false
	c.eiPending = false
	c.Trap = nil
}

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

func (c *CPU) setZNHC(z, n, h, cy bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if cy {
		f |= flagC
	}
	c.F = f
}

func (c *CPU) flagSet(mask byte) bool { return c.F&mask != 0 }

// --- 8-bit ALU primitives (§4.1) ---

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	return res, res == 0, false, ((a & 0x0F) + (b & 0x0F)) > 0x0F, r > 0xFF
}

func (c *CPU) adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	return res, res == 0, false, ((a & 0x0F) + (b & 0x0F) + ci) > 0x0F, r > 0xFF
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a - b
	return res, res == 0, true, (a & 0x0F) < (b & 0x0F), a < b
}

func (c *CPU) sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	full := uint16(a) - uint16(b) - uint16(ci)
	res = byte(full)
	h = (a & 0x0F) < ((b & 0x0F) + ci)
	cy = uint16(a) < uint16(b)+uint16(ci)
	return res, res == 0, true, h, cy
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

func (c *CPU) cp8(a, b byte) (z, n, h, cy bool) {
	_, z, n, h, cy = c.sub8(a, b)
	return
}

// --- memory helpers ---

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// reg8 returns a register value by the standard SM83 3-bit index
// (0=B,1=C,2=D,3=E,4=H,5=L,6=(HL),7=A).
func (c *CPU) reg8(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	case 7:
		c.A = v
	}
}

// irqVectors holds the fixed dispatch targets for IF bits 0..4
// (V-blank, LCD STAT, Timer, Serial, Joypad) per §4.5.
var irqVectors = [5]uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}

// serviceInterrupt dispatches the highest-priority pending interrupt, if any.
// Returns the cycle cost (20) if one was serviced, else 0.
func (c *CPU) serviceInterrupt() int {
	ie := c.bus.Read(0xFFFF)
	ifReg := c.bus.Read(0xFF0F) & 0x1F
	pending := ie & ifReg
	if pending == 0 {
		return 0
	}
	var bit uint
	for bit = 0; bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			break
		}
	}
	c.bus.Write(0xFF0F, ifReg&^(1<<bit))
	c.halted = false
	c.IME = false
	c.push16(c.PC)
	c.PC = irqVectors[bit]
	return 20
}

// Step executes one instruction (or services one pending interrupt) and
// returns the number of T-cycles it consumed (4 for NOP). If the CPU previously
// trapped on an unknown opcode, Step is a no-op returning 0.
func (c *CPU) Step() (cycles int) {
	if c.Trap != nil {
		return 0
	}

	defer func() {
		if c.bus != nil && cycles > 0 {
			c.bus.Tick(cycles)
		}
		if c.eiPending {
			c.IME = true
			c.eiPending = false
		}
	}()

	if c.halted {
		if c.IME {
			if cyc := c.serviceInterrupt(); cyc != 0 {
				return cyc
			}
			return 4
		}
		ifReg := c.bus.Read(0xFF0F) & 0x1F
		ie := c.bus.Read(0xFFFF)
		if ifReg&ie != 0 {
			c.halted = false
		} else {
			return 4
		}
	}

	if c.IME {
		if cyc := c.serviceInterrupt(); cyc != 0 {
			return cyc
		}
	}

	pc := c.PC
	op := c.fetch8()
	if cyc, ok := c.execute(op); ok {
		return cyc
	}
	c.Trap = &TrapError{PC: pc, Opcode: op}
	c.PC = pc
	return 0
}

// execute decodes and runs a single base-table opcode. The bool result is
// false for opcodes not present in the table (traps).
func (c *CPU) execute(op byte) (int, bool) {
	switch op {
	case 0x00: // NOP
		return 4, true
	case 0x10: // STOP d8 (one immediate byte consumed, canonically 0x00)
		c.fetch8()
		return 4, true
	case 0x76: // HALT
		c.halted = true
		return 4, true
	case 0xF3: // DI
		c.IME = false
		c.eiPending = false
		return 4, true
	case 0xFB: // EI
		c.eiPending = true
		return 4, true

	// 8-bit immediate loads
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		d := (op >> 3) & 7
		v := c.fetch8()
		c.setReg8(d, v)
		if d == 6 {
			return 12, true
		}
		return 8, true
	case 0x36: // LD (HL),d8
		v := c.fetch8()
		c.write8(c.getHL(), v)
		return 12, true

	// LD r,r' / LD (HL),r / LD r,(HL)
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		d := (op >> 3) & 7
		s := op & 7
		v := c.reg8(s)
		c.setReg8(d, v)
		if d == 6 || s == 6 {
			return 8, true
		}
		return 4, true

	// 16-bit immediate loads
	case 0x01:
		c.setBC(c.fetch16())
		return 12, true
	case 0x11:
		c.setDE(c.fetch16())
		return 12, true
	case 0x21:
		c.setHL(c.fetch16())
		return 12, true
	case 0x31:
		c.SP = c.fetch16()
		return 12, true
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 20, true

	case 0x02:
		c.write8(c.getBC(), c.A)
		return 8, true
	case 0x12:
		c.write8(c.getDE(), c.A)
		return 8, true
	case 0x0A:
		c.A = c.read8(c.getBC())
		return 8, true
	case 0x1A:
		c.A = c.read8(c.getDE())
		return 8, true

	case 0x22: // LD (HL+),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 8, true
	case 0x2A: // LD A,(HL+)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 8, true
	case 0x32: // LD (HL-),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 8, true
	case 0x3A: // LD A,(HL-)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 8, true

	case 0xE0: // LDH (a8),A
		n := uint16(c.fetch8())
		c.write8(0xFF00+n, c.A)
		return 12, true
	case 0xF0: // LDH A,(a8)
		n := uint16(c.fetch8())
		c.A = c.read8(0xFF00 + n)
		return 12, true
	case 0xE2: // LD (C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8, true
	case 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8, true
	case 0xEA: // LD (a16),A
		addr := c.fetch16()
		c.write8(addr, c.A)
		return 16, true
	case 0xFA: // LD A,(a16)
		addr := c.fetch16()
		c.A = c.read8(addr)
		return 16, true

	// Rotates on A
	case 0x07: // RLCA
		cy := (c.A >> 7) & 1
		c.A = (c.A << 1) | cy
		c.setZNHC(false, false, false, cy == 1)
		return 4, true
	case 0x0F: // RRCA
		cy := c.A & 1
		c.A = (c.A >> 1) | (cy << 7)
		c.setZNHC(false, false, false, cy == 1)
		return 4, true
	case 0x17: // RLA
		cy := (c.A >> 7) & 1
		in := byte(0)
		if c.flagSet(flagC) {
			in = 1
		}
		c.A = (c.A << 1) | in
		c.setZNHC(false, false, false, cy == 1)
		return 4, true
	case 0x1F: // RRA
		cy := c.A & 1
		in := byte(0)
		if c.flagSet(flagC) {
			in = 1
		}
		c.A = (c.A >> 1) | (in << 7)
		c.setZNHC(false, false, false, cy == 1)
		return 4, true

	case 0x27: // DAA
		a := c.A
		cf := c.flagSet(flagC)
		if !c.flagSet(flagN) {
			if cf || a > 0x99 {
				a += 0x60
				cf = true
			}
			if c.flagSet(flagH) || (a&0x0F) > 0x09 {
				a += 0x06
			}
		} else {
			if cf {
				a -= 0x60
			}
			if c.flagSet(flagH) {
				a -= 0x06
			}
		}
		c.A = a
		c.setZNHC(c.A == 0, c.flagSet(flagN), false, cf)
		return 4, true
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (flagZ | flagC)) | flagN | flagH
		return 4, true
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 4, true
	case 0x3F: // CCF
		cy := !c.flagSet(flagC)
		c.setZNHC(c.flagSet(flagZ), false, false, cy)
		return 4, true

	// INC/DEC 8-bit
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		d := (op >> 3) & 7
		old := c.reg8(d)
		v := old + 1
		c.setReg8(d, v)
		c.setZNHC(v == 0, false, (old&0x0F)+1 > 0x0F, c.flagSet(flagC))
		if d == 6 {
			return 12, true
		}
		return 4, true
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		d := (op >> 3) & 7
		old := c.reg8(d)
		v := old - 1
		c.setReg8(d, v)
		c.setZNHC(v == 0, true, old&0x0F == 0, c.flagSet(flagC))
		if d == 6 {
			return 12, true
		}
		return 4, true

	// 8-bit ALU: register or (HL) source, grouped by op column (bits 5-3).
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
		0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F,
		0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97,
		0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F,
		0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7,
		0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF,
		0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7,
		0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		s := op & 7
		src := c.reg8(s)
		c.aluOp((op>>3)&7, src)
		if s == 6 {
			return 8, true
		}
		return 4, true

	// 8-bit ALU immediate
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		v := c.fetch8()
		c.aluOp((op>>3)&7, v)
		return 8, true

	// Absolute/relative jumps
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16, true
	case 0xE9: // JP (HL)
		c.PC = c.getHL()
		return 4, true
	case 0x18: // JR r8
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12, true
	case 0x20, 0x28, 0x30, 0x38: // JR cc,r8
		off := int8(c.fetch8())
		if c.jumpCond(op) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12, true
		}
		return 8, true
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		addr := c.fetch16()
		if c.jumpCond(op) {
			c.PC = addr
			return 16, true
		}
		return 12, true

	// CALL/RET/RETI
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24, true
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.jumpCond(op) {
			c.push16(c.PC)
			c.PC = addr
			return 24, true
		}
		return 12, true
	case 0xC9:
		c.PC = c.pop16()
		return 16, true
	case 0xD9:
		c.PC = c.pop16()
		c.IME = true
		return 16, true
	case 0xC0, 0xC8, 0xD0, 0xD8:
		if c.jumpCond(op) {
			c.PC = c.pop16()
			return 20, true
		}
		return 8, true

	// RST
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 16, true

	// 16-bit INC/DEC
	case 0x03:
		c.setBC(c.getBC() + 1)
		return 8, true
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 8, true
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 8, true
	case 0x33:
		c.SP++
		return 8, true
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 8, true
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 8, true
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 8, true
	case 0x3B:
		c.SP--
		return 8, true

	// ADD HL,rr
	case 0x09, 0x19, 0x29, 0x39:
		var rr uint16
		switch op {
		case 0x09:
			rr = c.getBC()
		case 0x19:
			rr = c.getDE()
		case 0x29:
			rr = c.getHL()
		case 0x39:
			rr = c.SP
		}
		hl := c.getHL()
		r := uint32(hl) + uint32(rr)
		h := (hl&0x0FFF)+(rr&0x0FFF) > 0x0FFF
		c.setHL(uint16(r))
		c.setZNHC(c.flagSet(flagZ), false, h, r > 0xFFFF)
		return 8, true

	// SP-relative forms
	case 0xF8: // LD HL,SP+e8
		off := int8(c.fetch8())
		low := byte(c.SP)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.setHL(uint16(int32(c.SP) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 12, true
	case 0xF9: // LD SP,HL
		c.SP = c.getHL()
		return 8, true
	case 0xE8: // ADD SP,e8
		off := int8(c.fetch8())
		low := byte(c.SP)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SP = uint16(int32(c.SP) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 16, true

	// PUSH/POP
	case 0xC5:
		c.push16(c.getBC())
		return 16, true
	case 0xD5:
		c.push16(c.getDE())
		return 16, true
	case 0xE5:
		c.push16(c.getHL())
		return 16, true
	case 0xF5:
		c.push16(c.getAF())
		return 16, true
	case 0xC1:
		c.setBC(c.pop16())
		return 12, true
	case 0xD1:
		c.setDE(c.pop16())
		return 12, true
	case 0xE1:
		c.setHL(c.pop16())
		return 12, true
	case 0xF1:
		c.setAF(c.pop16())
		return 12, true

	case 0xCB:
		cb := c.fetch8()
		return c.executeCB(cb)

	default:
		return 0, false
	}
}

// aluOp applies one of the eight 8-bit ALU ops (by the standard y index) to A.
func (c *CPU) aluOp(op8 byte, src byte) {
	switch op8 {
	case 0: // ADD
		r, z, n, h, cy := c.add8(c.A, src)
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 1: // ADC
		r, z, n, h, cy := c.adc8(c.A, src, c.flagSet(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 2: // SUB
		r, z, n, h, cy := c.sub8(c.A, src)
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 3: // SBC
		r, z, n, h, cy := c.sbc8(c.A, src, c.flagSet(flagC))
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 4: // AND
		r, z, n, h, cy := c.and8(c.A, src)
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 5: // XOR
		r, z, n, h, cy := c.xor8(c.A, src)
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 6: // OR
		r, z, n, h, cy := c.or8(c.A, src)
		c.A = r
		c.setZNHC(z, n, h, cy)
	case 7: // CP
		z, n, h, cy := c.cp8(c.A, src)
		c.setZNHC(z, n, h, cy)
	}
}

// jumpCond evaluates the {NZ,Z,NC,C} predicate encoded in bits 4-3 of a
// JR/JP/CALL/RET-conditional opcode.
func (c *CPU) jumpCond(op byte) bool {
	switch (op >> 3) & 3 {
	case 0:
		return !c.flagSet(flagZ)
	case 1:
		return c.flagSet(flagZ)
	case 2:
		return !c.flagSet(flagC)
	default:
		return c.flagSet(flagC)
	}
}

// executeCB decodes and runs one 0xCB-prefixed opcode.
func (c *CPU) executeCB(cb byte) (int, bool) {
	reg := cb & 7
	group := (cb >> 6) & 3
	y := (cb >> 3) & 7

	cycles := 8
	if reg == 6 {
		cycles = 16
	}

	switch group {
	case 0: // rotate/shift/swap
		v := c.reg8(reg)
		var cy byte
		switch y {
		case 0: // RLC
			cy = (v >> 7) & 1
			v = (v << 1) | cy
		case 1: // RRC
			cy = v & 1
			v = (v >> 1) | (cy << 7)
		case 2: // RL
			cy = (v >> 7) & 1
			in := byte(0)
			if c.flagSet(flagC) {
				in = 1
			}
			v = (v << 1) | in
		case 3: // RR
			cy = v & 1
			in := byte(0)
			if c.flagSet(flagC) {
				in = 1
			}
			v = (v >> 1) | (in << 7)
		case 4: // SLA
			cy = (v >> 7) & 1
			v <<= 1
		case 5: // SRA
			cy = v & 1
			v = (v >> 1) | (v & 0x80)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
			cy = 0
		case 7: // SRL
			cy = v & 1
			v >>= 1
		}
		c.setReg8(reg, v)
		c.setZNHC(v == 0, false, false, cy == 1)
		return cycles, true
	case 1: // BIT y,r
		v := c.reg8(reg)
		z := (v>>y)&1 == 0
		c.F = (c.F & flagC) | flagH
		if z {
			c.F |= flagZ
		}
		if reg == 6 {
			return 12, true
		}
		return cycles, true
	case 2: // RES y,r
		v := c.reg8(reg)
		v &^= 1 << y
		c.setReg8(reg, v)
		return cycles, true
	default: // SET y,r
		v := c.reg8(reg)
		v |= 1 << y
		c.setReg8(reg, v)
		return cycles, true
	}
}
