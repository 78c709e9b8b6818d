// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	algPBKDF2 = "pbkdf2"
	algScrypt = "scrypt"

	defaultProfile = "interactive"
)

// profile is a named set of derivation parameters.  Fields that do not apply
// to the profile's algorithm are ignored.
type profile struct {
	Algorithm  string `yaml:"algorithm"`
	Iterations int    `yaml:"iterations,omitempty"`
	N          int    `yaml:"n,omitempty"`
	R          int    `yaml:"r,omitempty"`
	P          int    `yaml:"p,omitempty"`
	KeyLen     int    `yaml:"keylen,omitempty"`
}

// profileFile is the layout of a --profiles YAML file:
//
//	profiles:
//	  archive:
//	    algorithm: scrypt
//	    n: 1048576
//	    r: 8
//	    p: 1
//	    keylen: 64
type profileFile struct {
	Profiles map[string]profile `yaml:"profiles"`
}

// builtinProfiles are available without a profiles file.
var builtinProfiles = map[string]profile{
	"interactive": {Algorithm: algScrypt, N: 1 << 15, R: 8, P: 1, KeyLen: 32},
	"sensitive":   {Algorithm: algScrypt, N: 1 << 20, R: 8, P: 1, KeyLen: 32},
	"pbkdf2":      {Algorithm: algPBKDF2, Iterations: 600000, KeyLen: 32},
}

// loadProfiles returns the built-in profiles merged with, and overridden by,
// the profiles defined in the YAML file at path.  An empty path only returns
// the built-in profiles.
func loadProfiles(path string) (map[string]profile, error) {
	profiles := make(map[string]profile, len(builtinProfiles))
	for name, p := range builtinProfiles {
		profiles[name] = p
	}
	if path == "" {
		return profiles, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pf profileFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}

	for name, p := range pf.Profiles {
		p.Algorithm = strings.ToLower(p.Algorithm)
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("%s: profile %q: %v", path, name, err)
		}
		profiles[name] = p
	}
	return profiles, nil
}

// validate checks that the profile names a known algorithm.  Cost parameters
// are checked by the derivation packages themselves.
func (p profile) validate() error {
	switch p.Algorithm {
	case algPBKDF2, algScrypt:
		return nil
	case "":
		return fmt.Errorf("no algorithm")
	default:
		return fmt.Errorf("unknown algorithm %q", p.Algorithm)
	}
}

// profileNames returns the sorted names of profiles.
func profileNames(profiles map[string]profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
