// File path: internal/rpg/rpgtest_test.go
package rpg

// fixedLine lays field values down at exact 0-indexed columns so tests
// exercise the same layout contract the classifier reads.
func fixedLine(width int, fields map[int]string) string {
	buf := make([]byte, width)
	for i := range buf {
		buf[i] = ' '
	}
	for start, value := range fields {
		for i := 0; i < len(value) && start+i < width; i++ {
			buf[start+i] = value[i]
		}
	}
	return string(buf)
}

func calcLine(indicators, factor1, opcode, factor2, result string) string {
	return fixedLine(80, map[int]string{
		5:  "C",
		7:  indicators,
		11: factor1,
		26: opcode,
		36: factor2,
		50: result,
	})
}

func fileLine(name, typeCode, keyed, device string) string {
	return fixedLine(80, map[int]string{
		5:  "F",
		7:  name,
		15: typeCode,
		33: keyed,
		35: device,
	})
}

func defnLine(name string) string {
	return fixedLine(80, map[int]string{5: "D", 6: name, 24: "S"})
}
