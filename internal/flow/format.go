package flow

import (
	"fmt"
	"time"
)

// FormatRemaining renders a countdown duration as MM:SS, floored at zero.
func FormatRemaining(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
