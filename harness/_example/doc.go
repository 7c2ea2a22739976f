// Copyright 2017 CoreOS, Inc.
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

// This example program illustrates how to build a standalone test binary
// on the harness package. Tests receive data that can be overridden in the
// environment, and one of them is stopped at a hard deadline. When run:
//
//	./example -color=never
//	Running 2 tests.
//
//	--------------------------------------------------------------------------------
//	[1 / 2] Running test "greeting":
//
//	Test passed. "greeting" terminated in 0.000012 seconds.
//	--------------------------------------------------------------------------------
//	...
//	Tests completed in 0.003114 seconds with 2 / 2 passed (0 failed).
//
// Setting TEST_DATA_greeting to anything but "hello" fails the first test.
package main
