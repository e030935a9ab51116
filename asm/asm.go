package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/mosbit/m6502/cpu"
)

// patch is a forward reference awaiting its label's address.
type patch struct {
	seg    int
	offset int
	label  string
	rel    bool   // one-byte relative displacement instead of a word
	pc     uint16 // address after the instruction, displacement origin
	lineno int
}

// Assembler is a single-pass assembler with label backpatching.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
	Label     map[string]uint16 // Map of labels to addresses.

	segments []Segment
	patches  []patch
}

// Predefine defines an equate before parsing, typically from the
// emulator's Defines().
func (a *Assembler) Predefine(name string, value string) {
	if a.predefine == nil {
		a.predefine = map[string]string{name: value}
	} else {
		a.predefine[name] = value
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// currentAddr is the address the next emitted byte will occupy.
func (a *Assembler) currentAddr() uint16 {
	if len(a.segments) == 0 {
		return 0
	}
	seg := &a.segments[len(a.segments)-1]
	return seg.Addr + uint16(len(seg.Code))
}

// emit appends bytes to the open segment, opening one at address zero
// when the source never used .org.
func (a *Assembler) emit(code ...byte) {
	if len(a.segments) == 0 {
		a.segments = append(a.segments, Segment{})
	}
	seg := &a.segments[len(a.segments)-1]
	seg.Code = append(seg.Code, code...)
}

// eval resolves an expression word to a value. An undefined identifier
// is not an error: it is reported unresolved and the caller may record
// a patch for it.
func (a *Assembler) eval(expr string) (value uint32, resolved bool, err error) {
	// Chase equates; they may alias each other.
	for depth := 0; ; depth++ {
		if depth > 32 {
			err = ErrEquateLoop
			return
		}
		next, ok := a.Equate[expr]
		if !ok {
			break
		}
		expr = next
	}

	if expr == "" {
		err = ErrValueMissing
		return
	}

	if addr, ok := a.Label[expr]; ok {
		return uint32(addr), true, nil
	}

	switch expr[0] {
	case '\'':
		var ch byte
		ch, err = charLiteral(expr)
		if err != nil {
			return
		}
		return uint32(ch), true, nil
	case '$':
		var v64 uint64
		v64, err = strconv.ParseUint(expr[1:], 16, 32)
		if err != nil {
			err = ErrParseNumber(expr)
			return
		}
		return uint32(v64), true, nil
	case '%':
		var v64 uint64
		v64, err = strconv.ParseUint(expr[1:], 2, 32)
		if err != nil {
			err = ErrParseNumber(expr)
			return
		}
		return uint32(v64), true, nil
	}

	v64, perr := strconv.ParseInt(expr, 0, 33)
	if perr == nil {
		if v64 < 0 {
			v64 = 0x100000000 + v64
		}
		return uint32(v64), true, nil
	}

	if identRe.MatchString(expr) {
		// Possibly a label defined further down.
		return 0, false, nil
	}

	err = ErrParseNumber(expr)
	return
}

// charLiteral decodes 'x' with the usual backslash escapes.
func charLiteral(expr string) (byte, error) {
	body, ok := strings.CutPrefix(expr, "'")
	if !ok {
		return 0, ErrParseNumber(expr)
	}
	body, ok = strings.CutSuffix(body, "'")
	if !ok {
		return 0, ErrParseNumber(expr)
	}
	if len(body) == 2 && body[0] == '\\' {
		switch body[1] {
		case 'n':
			return '\n', nil
		case 'r':
			return '\r', nil
		case '0':
			return 0, nil
		case 'e':
			return '\033', nil
		case '\\':
			return '\\', nil
		}
		return 0, ErrParseNumber(expr)
	}
	if len(body) != 1 {
		return 0, ErrParseNumber(expr)
	}
	return body[0], nil
}

// parenEval does compile-time $( ) evaluations.
func (a *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range a.Equate {
		v32, resolved, verr := a.eval(str)
		if verr != nil || !resolved {
			// Non-integer equates are not visible to expressions.
			continue
		}
		pred[key] = starlark.MakeInt(int(v32))
	}
	for key, addr := range a.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	rc64, ok := rcInt.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(rc64)
	return
}

var parenRe = regexp.MustCompile(`\$\([^$)]*\)`)

// expand rewrites $( ) expressions into plain numbers.
func (a *Assembler) expand(line string) (string, error) {
	var err error
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, verr := a.parenEval(str[2 : len(str)-1])
		if verr != nil {
			err = verr
		}
		return fmt.Sprintf("%v", value)
	})
	return line, err
}

// Parse assembles an input stream into a Program.
func (a *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		var located *ErrSyntax
		if err != nil && !errors.As(err, &located) {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	a.Label = make(map[string]uint16, 16)
	a.Equate = maps.Clone(a.predefine)
	if a.Equate == nil {
		a.Equate = make(map[string]string, 16)
	}
	a.segments = nil
	a.patches = nil

	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if a.Verbose {
			log.Printf("%v: %v", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)

		line, err = a.expand(line)
		if err != nil {
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		// Labels may stack before a statement.
		for strings.HasSuffix(words[0], ":") {
			label := strings.TrimSuffix(words[0], ":")
			if _, ok := a.Label[label]; ok {
				err = ErrLabelDuplicate
				return
			}
			a.Label[label] = a.currentAddr()
			words = words[1:]
			if len(words) == 0 {
				break
			}
		}
		if len(words) == 0 {
			continue
		}

		err = a.parseStatement(words, lineno)
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	err = a.link()
	if err != nil {
		return
	}

	prog = &Program{Segments: a.segments}
	return
}

// parseStatement handles one directive or instruction.
func (a *Assembler) parseStatement(words []string, lineno int) error {
	// NAME = VALUE equate
	if len(words) >= 2 && words[1] == "=" {
		if len(words) != 3 {
			return ErrEquateSyntax
		}
		return a.equate(words[0], words[2])
	}

	switch words[0] {
	case ".equ":
		if len(words) != 3 {
			return ErrEquateSyntax
		}
		return a.equate(words[1], words[2])

	case ".org":
		if len(words) != 2 {
			return ErrOrgSyntax
		}
		value, resolved, err := a.eval(words[1])
		if err != nil {
			return err
		}
		if !resolved || value > 0xFFFF {
			return ErrOrgSyntax
		}
		return a.org(uint16(value))

	case ".byte":
		return a.data(words[1:], 1, lineno)

	case ".word":
		return a.data(words[1:], 2, lineno)
	}

	return a.instruction(words, lineno)
}

func (a *Assembler) equate(name, value string) error {
	if !identRe.MatchString(name) {
		return ErrEquateSyntax
	}
	if _, ok := a.Equate[name]; ok {
		return ErrEquateDuplicate
	}
	a.Equate[name] = value
	return nil
}

// org opens a new segment. Segments must move forward; overlapping an
// already-emitted range is rejected here rather than at load time.
func (a *Assembler) org(addr uint16) error {
	if len(a.segments) > 0 {
		last := &a.segments[len(a.segments)-1]
		if len(last.Code) == 0 {
			last.Addr = addr
			return nil
		}
		if addr < last.Addr+uint16(len(last.Code)) {
			return ErrOrgBackwards
		}
	}
	a.segments = append(a.segments, Segment{Addr: addr})
	return nil
}

// data emits .byte or .word items.
func (a *Assembler) data(words []string, width int, lineno int) error {
	items := strings.Split(strings.Join(words, ""), ",")
	for _, item := range items {
		if item == "" {
			return ErrValueMissing
		}
		value, resolved, err := a.eval(item)
		if err != nil {
			return err
		}
		if !resolved {
			if width != 2 {
				return ErrLabelMissing(item)
			}
			a.patches = append(a.patches, patch{
				seg:    a.segIndex(),
				offset: a.segOffset(),
				label:  item,
				lineno: lineno,
			})
			a.emit(0, 0)
			continue
		}
		switch width {
		case 1:
			if value > 0xFF {
				return ErrOperandRange
			}
			a.emit(byte(value))
		case 2:
			if value > 0xFFFF {
				return ErrOperandRange
			}
			a.emit(byte(value), byte(value>>8))
		}
	}
	return nil
}

// segIndex ensures a segment is open and returns its index.
func (a *Assembler) segIndex() int {
	if len(a.segments) == 0 {
		a.segments = append(a.segments, Segment{})
	}
	return len(a.segments) - 1
}

// segOffset is the offset the next byte will occupy in the open segment.
func (a *Assembler) segOffset() int {
	return len(a.segments[a.segIndex()].Code)
}

// instruction assembles one mnemonic plus operand field.
func (a *Assembler) instruction(words []string, lineno int) error {
	m, ok := cpu.ParseMnemonic(words[0])
	if !ok {
		return ErrMnemonicInvalid(words[0])
	}

	// Operand spacing is free-form; addressing syntax is not.
	field := strings.Join(words[1:], "")

	if m.IsBranch() {
		return a.branch(m, field, lineno)
	}

	mode, expr, err := classify(field)
	if err != nil {
		return err
	}

	if mode == opNone {
		// Bare mnemonic: implied, or accumulator for the shifts.
		if opcode, ok := cpu.Encode(m, cpu.Implied); ok {
			a.emit(opcode)
			return nil
		}
		if opcode, ok := cpu.Encode(m, cpu.Accumulator); ok {
			a.emit(opcode)
			return nil
		}
		return ErrModeInvalid
	}
	if mode == opAccum {
		opcode, ok := cpu.Encode(m, cpu.Accumulator)
		if !ok {
			return ErrModeInvalid
		}
		a.emit(opcode)
		return nil
	}

	value, resolved, err := a.eval(expr)
	if err != nil {
		return err
	}

	switch mode {
	case opImm:
		if !resolved {
			return ErrLabelMissing(expr)
		}
		if value > 0xFF {
			return ErrOperandRange
		}
		opcode, ok := cpu.Encode(m, cpu.Immediate)
		if !ok {
			return ErrModeInvalid
		}
		a.emit(opcode, byte(value))
		return nil

	case opIndX, opIndY:
		if !resolved {
			return ErrLabelMissing(expr)
		}
		if value > 0xFF {
			return ErrOperandRange
		}
		cm := cpu.IndirectX
		if mode == opIndY {
			cm = cpu.IndirectY
		}
		opcode, ok := cpu.Encode(m, cm)
		if !ok {
			return ErrModeInvalid
		}
		a.emit(opcode, byte(value))
		return nil

	case opInd:
		return a.wordOperand(m, cpu.Indirect, expr, value, resolved, lineno)

	case opPlain:
		if resolved && value <= 0xFF {
			if opcode, ok := cpu.Encode(m, cpu.ZeroPage); ok {
				a.emit(opcode, byte(value))
				return nil
			}
		}
		return a.wordOperand(m, cpu.Absolute, expr, value, resolved, lineno)

	case opIdxX:
		if resolved && value <= 0xFF {
			if opcode, ok := cpu.Encode(m, cpu.ZeroPageX); ok {
				a.emit(opcode, byte(value))
				return nil
			}
		}
		return a.wordOperand(m, cpu.AbsoluteX, expr, value, resolved, lineno)

	case opIdxY:
		if resolved && value <= 0xFF {
			if opcode, ok := cpu.Encode(m, cpu.ZeroPageY); ok {
				a.emit(opcode, byte(value))
				return nil
			}
		}
		return a.wordOperand(m, cpu.AbsoluteY, expr, value, resolved, lineno)
	}

	return ErrOperandSyntax
}

// wordOperand emits an instruction with a 16-bit operand, patching
// forward label references.
func (a *Assembler) wordOperand(m cpu.Mnemonic, cm cpu.AddrMode, expr string, value uint32, resolved bool, lineno int) error {
	opcode, ok := cpu.Encode(m, cm)
	if !ok {
		return ErrModeInvalid
	}
	if !resolved {
		a.emit(opcode)
		a.patches = append(a.patches, patch{
			seg:    a.segIndex(),
			offset: a.segOffset(),
			label:  expr,
			lineno: lineno,
		})
		a.emit(0, 0)
		return nil
	}
	if value > 0xFFFF {
		return ErrOperandRange
	}
	a.emit(opcode, byte(value), byte(value>>8))
	return nil
}

// branch assembles a conditional branch: a one-byte signed displacement
// from the address after the instruction.
func (a *Assembler) branch(m cpu.Mnemonic, field string, lineno int) error {
	if field == "" {
		return ErrValueMissing
	}
	opcode, ok := cpu.Encode(m, cpu.Relative)
	if !ok {
		return ErrModeInvalid
	}
	value, resolved, err := a.eval(field)
	if err != nil {
		return err
	}
	a.emit(opcode)
	after := a.currentAddr() + 1
	if !resolved {
		a.patches = append(a.patches, patch{
			seg:    a.segIndex(),
			offset: a.segOffset(),
			label:  field,
			rel:    true,
			pc:     after,
			lineno: lineno,
		})
		a.emit(0)
		return nil
	}
	disp := int(value) - int(after)
	if disp < -128 || disp > 127 {
		return ErrBranchRange
	}
	a.emit(byte(int8(disp)))
	return nil
}

// link resolves forward references once every label is known.
func (a *Assembler) link() error {
	for _, p := range a.patches {
		target, ok := a.Label[p.label]
		if !ok {
			return &ErrSyntax{LineNo: p.lineno, Line: p.label, Err: ErrLabelMissing(p.label)}
		}
		code := a.segments[p.seg].Code
		if p.rel {
			disp := int(target) - int(p.pc)
			if disp < -128 || disp > 127 {
				return &ErrSyntax{LineNo: p.lineno, Line: p.label, Err: ErrBranchRange}
			}
			code[p.offset] = byte(int8(disp))
			continue
		}
		code[p.offset] = byte(target)
		code[p.offset+1] = byte(target >> 8)
	}
	return nil
}

// Operand shapes recognized by classify.
type shape int

const (
	opNone shape = iota
	opAccum
	opImm
	opPlain
	opIdxX
	opIdxY
	opInd
	opIndX
	opIndY
)

// classify determines the operand's addressing shape and extracts the
// expression inside it. Zero page versus absolute is decided later from
// the value and the opcode table.
func classify(field string) (shape, string, error) {
	switch {
	case field == "":
		return opNone, "", nil
	case field == "A" || field == "a":
		return opAccum, "", nil
	case strings.HasPrefix(field, "#"):
		return opImm, field[1:], nil
	case strings.HasPrefix(field, "("):
		body := field[1:]
		switch {
		case strings.HasSuffix(body, ",X)"), strings.HasSuffix(body, ",x)"):
			return opIndX, body[:len(body)-3], nil
		case strings.HasSuffix(body, "),Y"), strings.HasSuffix(body, "),y"):
			return opIndY, body[:len(body)-3], nil
		case strings.HasSuffix(body, ")"):
			return opInd, body[:len(body)-1], nil
		}
		return opNone, "", ErrOperandSyntax
	case strings.HasSuffix(field, ",X"), strings.HasSuffix(field, ",x"):
		return opIdxX, field[:len(field)-2], nil
	case strings.HasSuffix(field, ",Y"), strings.HasSuffix(field, ",y"):
		return opIdxY, field[:len(field)-2], nil
	default:
		return opPlain, field, nil
	}
}
