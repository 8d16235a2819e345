// Copyright 2026 go-qnn Authors
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

package dwconv

// NewZeroBuffer allocates the shared zero buffer substituted for padding
// taps. It spans all channels so a zero tap can be read tile by tile at
// the same channel offsets as a real row. The buffer is never written
// after creation; concurrent kernel calls share it read-only.
func NewZeroBuffer(channels int) []int8 {
	if channels <= 0 {
		panic("dwconv: channels must be positive")
	}
	return make([]int8, channels)
}
