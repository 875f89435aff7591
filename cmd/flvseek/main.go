// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package main

import (
	"github.com/gengteng/flv/tools/seek"
)

func main() {
	seek.Main()
}
