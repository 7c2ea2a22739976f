// Copyright 2017 CoreOS, Inc.
// Copyright 2015 The Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package harness

import (
	"regexp"
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

// matcher filters test names. A nil pattern matches everything.
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(pattern string) (*matcher, error) {
	if pattern == "" {
		return &matcher{}, nil
	}
	re, err := regexp.Compile(rewrite(pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "harness: invalid match pattern %q", pattern)
	}
	return &matcher{re: re}, nil
}

// matches reports whether name is selected. Names are compared in their
// rewritten form so a pattern can be copied from the TAP file.
func (m *matcher) matches(name string) bool {
	if m == nil || m.re == nil {
		return true
	}
	return m.re.MatchString(rewrite(name))
}

// rewrite rewrites a name to having only printable characters and no white
// space.
func rewrite(s string) string {
	b := []byte{}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b = append(b, '_')
		case !strconv.IsPrint(r):
			s := strconv.QuoteRune(r)
			b = append(b, s[1:len(s)-1]...)
		default:
			b = append(b, string(r)...)
		}
	}
	return string(b)
}
