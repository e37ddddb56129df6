// File path: internal/rpg/blocks.go
package rpg

import "strings"

// FixedBlocks recovers contiguous fixed-format regions from arbitrary text.
// A block opens on the first line carrying a recognized specification tag,
// survives blank lines, and closes on a non-blank untagged line or at end of
// input. No accumulated block is dropped.
func FixedBlocks(text string) []string {
	var blocks []string
	var buffer []string
	inside := false
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		blocks = append(blocks, strings.Join(buffer, "\n"))
		buffer = buffer[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		tagged := Classify(line, 0).Tag != TagUnknown
		blank := strings.TrimSpace(line) == ""
		switch {
		case !inside && tagged:
			inside = true
			buffer = append(buffer, line)
		case inside && (tagged || blank):
			buffer = append(buffer, line)
		case inside:
			flush()
			inside = false
		}
	}
	flush()
	return blocks
}
