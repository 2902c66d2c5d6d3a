package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

// Errors reported inside a ParseError.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("wrong number of arguments")
	ErrBadArgument    = errors.New("bad argument")
)

// A ParseError tells which line of an instruction file is malformed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile parses the instruction file at path.
func ParseFile(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads instructions, one per line. The result is ordered by tick;
// instructions of the same tick keep their file order.
func Parse(r io.Reader) ([]Instruction, error) {
	var out []Instruction

	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		inst, err := parseLine(lineNo, strings.Fields(text))
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}

		out = append(out, inst)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tick() < out[j].Tick()
	})

	return out, nil
}

func parseLine(lineNo int, fields []string) (Instruction, error) {
	if len(fields) < 2 {
		return nil, ErrArgCount
	}

	t, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: tick %q", ErrBadArgument, fields[0])
	}

	at := At{Time: t, Source: lineNo}
	cmd, args := fields[1], fields[2:]

	switch cmd {
	case "create":
		return parseCreate(at, args)
	case "connect":
		if len(args) != 2 {
			return nil, ErrArgCount
		}

		return Connect{At: at, PortA: args[0], PortB: args[1]}, nil
	case "disconnect":
		if len(args) != 1 {
			return nil, ErrArgCount
		}

		return Disconnect{At: at, Port: args[0]}, nil
	case "mac":
		return parseMAC(at, args)
	case "ip":
		return parseIP(at, args)
	case "send":
		return parseSend(at, args)
	case "send_frame":
		return parseSendFrame(at, args)
	case "send_packet":
		return parseSendPacket(at, args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func parseCreate(at At, args []string) (Instruction, error) {
	if len(args) < 2 {
		return nil, ErrArgCount
	}

	kind, name := args[0], args[1]

	if kind == "host" {
		if len(args) != 2 {
			return nil, ErrArgCount
		}

		return CreateHost{At: at, Name: name}, nil
	}

	if kind != "hub" && kind != "switch" {
		return nil, fmt.Errorf("%w: create %s", ErrUnknownCommand, kind)
	}

	if len(args) != 3 {
		return nil, ErrArgCount
	}

	ports, err := strconv.Atoi(args[2])
	if err != nil || ports <= 0 {
		return nil, fmt.Errorf("%w: port count %q", ErrBadArgument, args[2])
	}

	if kind == "hub" {
		return CreateHub{At: at, Name: name, Ports: ports}, nil
	}

	return CreateSwitch{At: at, Name: name, Ports: ports}, nil
}

func parseMAC(at At, args []string) (Instruction, error) {
	if len(args) != 2 {
		return nil, ErrArgCount
	}

	m, err := frame.ParseMAC(args[1])
	if err != nil {
		return nil, err
	}

	return SetMAC{At: at, Host: args[0], MAC: m}, nil
}

func parseIP(at At, args []string) (Instruction, error) {
	if len(args) != 3 {
		return nil, ErrArgCount
	}

	addr, err := parseIPv4(args[1])
	if err != nil {
		return nil, err
	}

	mask, err := parseIPv4(args[2])
	if err != nil {
		return nil, err
	}

	return SetIP{At: at, Host: args[0], Addr: addr, Mask: mask}, nil
}

func parseIPv4(text string) (netip.Addr, error) {
	a, err := netip.ParseAddr(text)
	if err != nil || !a.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: address %q", ErrBadArgument, text)
	}

	return a, nil
}

func parseSend(at At, args []string) (Instruction, error) {
	if len(args) != 2 {
		return nil, ErrArgCount
	}

	data, err := wiring.ParseSignals(args[1])
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrBadArgument)
	}

	return Send{At: at, Host: args[0], Data: data}, nil
}

func parseSendFrame(at At, args []string) (Instruction, error) {
	if len(args) != 3 {
		return nil, ErrArgCount
	}

	dst, err := frame.ParseMAC(args[1])
	if err != nil {
		return nil, err
	}

	data, err := frame.ParseHexData(args[2])
	if err != nil {
		return nil, err
	}

	return SendFrame{At: at, Host: args[0], Dst: dst, Data: data}, nil
}

func parseSendPacket(at At, args []string) (Instruction, error) {
	if len(args) != 3 {
		return nil, ErrArgCount
	}

	dst, err := parseIPv4(args[1])
	if err != nil {
		return nil, err
	}

	data, err := frame.ParseHexData(args[2])
	if err != nil {
		return nil, err
	}

	return SendPacket{At: at, Host: args[0], Dst: dst, Data: data}, nil
}
