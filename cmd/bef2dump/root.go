package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/envelope"
	"github.com/clamor-s/bef2/inspect"
)

const (
	flagHex      = "hex"
	flagEnvelope = "envelope"
	flagMaxItems = "max-items"
	flagMaxDepth = "max-depth"
	flagLogLevel = "log-level"
)

func newRootCmd() *cobra.Command {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cmd := &cobra.Command{
		Use:          "bef2dump [file]",
		Short:        "Prints the element tree of a BEF2 message.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelStr, _ := cmd.Flags().GetString(flagLogLevel)
			level, err := logrus.ParseLevel(levelStr)
			if err != nil {
				return err
			}
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, log)
		},
	}

	cmd.Flags().Bool(flagHex, false, "Input is hex text instead of raw bytes.")
	cmd.Flags().Bool(flagEnvelope, false, "Input is a sealed envelope.")
	cmd.Flags().Int(flagMaxItems, inspect.DefaultMaxArrayItems, "Array elements printed per array, 0 for all.")
	cmd.Flags().Int(flagMaxDepth, codec.DefaultMaxDepth, "Maximum sequence nesting depth.")
	cmd.Flags().String(flagLogLevel, "warn", "Log level.")

	return cmd
}

func run(cmd *cobra.Command, args []string, log *logrus.Logger) error {
	data, source, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"source": source, "size": len(data)}).Debug("read input")

	isHex, _ := cmd.Flags().GetBool(flagHex)
	if isHex {
		data, err = decodeHex(data)
		if err != nil {
			return fmt.Errorf("invalid hex input: %w", err)
		}
		log.WithField("size", len(data)).Debug("decoded hex")
	}

	isEnvelope, _ := cmd.Flags().GetBool(flagEnvelope)
	if isEnvelope {
		msg, h, err := envelope.Open(data)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"compression": h.Compression.String(),
			"raw_size":    h.RawSize,
			"checksum":    fmt.Sprintf("%016x", h.Checksum),
		}).Info("opened envelope")
		data = msg
	}

	maxItems, _ := cmd.Flags().GetInt(flagMaxItems)
	maxDepth, _ := cmd.Flags().GetInt(flagMaxDepth)

	out, err := inspect.Dump(data,
		inspect.WithMaxArrayItems(maxItems),
		inspect.WithDecoderOptions(codec.WithMaxDepth(maxDepth)),
	)
	// A malformed message still prints the elements read before the failure.
	if _, werr := io.WriteString(cmd.OutOrStdout(), out); werr != nil {
		return werr
	}

	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, "stdin", err
	}

	data, err := os.ReadFile(args[0])

	return data, args[0], err
}

// decodeHex decodes hex text, ignoring whitespace and an optional 0x prefix.
func decodeHex(text []byte) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(text))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	return hex.DecodeString(s)
}
