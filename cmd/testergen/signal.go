// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Linhanmic/tester-template-engine/signal"
)

func newEncodeCmd(a *app) *cobra.Command {
	var message bool
	cmd := &cobra.Command{
		Use:   "encode signal...",
		Short: "Encode CAN signals",
		Long: "Encode encodes each signal, given as \"id,byte.bit-byte.bit=value\", and prints the\n" +
			"frame data in hexadecimal. With --message it prints the tcans command instead.",
		Example: "  testergen encode '0x261,1.0-2.1=0x23A'\n  testergen encode --message '0x261,1.0-1.3,2.4-2.7=0xAB'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, spec := range args {
				var s string
				var err error
				if message {
					s, err = signal.Message(spec)
				} else {
					s, err = signal.Encode(spec)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&message, "message", "m", false, "print the tcans command")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decode data ranges",
		Short:   "Decode a CAN signal from frame data",
		Long:    "Decode extracts the value of the bit ranges from the frame data and prints it in decimal\nand hexadecimal.",
		Example: "  testergen decode '3A 02' 1.0-2.1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := signal.ParseData(args[0])
			if err != nil {
				return err
			}
			ranges, err := signal.ParseRanges(args[1])
			if err != nil {
				return err
			}
			v, err := signal.Decode(data, ranges)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s 0x%X\n", v, v)
			return nil
		},
	}
	return cmd
}
