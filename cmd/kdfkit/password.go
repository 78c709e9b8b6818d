// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword returns the password to derive from.  With --password-stdin
// it is the first line of stdin, without the line terminator.  Otherwise
// stdin must be a terminal and the password is read from it without echo
// after writing a prompt to prompt.
func readPassword(cfg *config, stdin io.Reader, prompt io.Writer) ([]byte, error) {
	if cfg.PasswordStdin {
		line, err := bufio.NewReader(stdin).ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading password: %v", err)
		}
		return bytes.TrimRight(line, "\r\n"), nil
	}

	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, errors.New("standard input is not a terminal -- " +
			"use --password-stdin to read the password from it")
	}

	fmt.Fprint(prompt, "Password: ")
	password, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, fmt.Errorf("reading password: %v", err)
	}
	return password, nil
}
