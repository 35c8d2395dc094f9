//go:build tools

// SPDX-License-Identifier: EPL-2.0

package audiomancer

import (
	_ "github.com/maxbrunsfeld/counterfeiter/v6"
)
