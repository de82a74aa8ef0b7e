// Command calc is a line-oriented keypad calculator. Each input line is a
// sequence of keys ("12+3*4=", "9 sqrt", "C"); the display is printed after
// every line. "q" quits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"keypad-calculator/internal/evaluator"
)

func main() {
	trace := flag.Bool("trace", false, "print the display after every key instead of every line")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Stdin, os.Stdout, logger, *trace); err != nil {
		logger.Error("reading input", zap.Error(err))
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, logger *zap.Logger, trace bool) error {
	e := evaluator.New()
	fmt.Fprintln(out, e.Display())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		keys, err := evaluator.ParseKeys(line)
		if err != nil {
			logger.Warn("ignoring line", zap.String("line", line), zap.Error(err))
			continue
		}

		for _, k := range keys {
			e.Press(k)
			if trace {
				fmt.Fprintf(out, "%-4s %s\n", k, e.Display())
			}
		}
		if !trace {
			fmt.Fprintln(out, e.Display())
		}
	}

	return scanner.Err()
}
