package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Stdio struct {
	out io.Writer
	in  *bufio.Reader
}

func NewStdio() *Stdio {
	return &Stdio{
		out: os.Stdout,
		in:  bufio.NewReader(os.Stdin),
	}
}

// NewStdioWith wires explicit streams, for tests.
func NewStdioWith(out io.Writer, in io.Reader) *Stdio {
	return &Stdio{
		out: out,
		in:  bufio.NewReader(in),
	}
}

func (s *Stdio) Println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
