package models

import "fmt"

// FormatMoney renders integer cents as a BRL display string.
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("R$ %s%d.%02d", sign, cents/100, cents%100)
}
