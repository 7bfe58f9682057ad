// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geoform/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
