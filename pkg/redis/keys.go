package redis

import "fmt"

// HistoryKey returns the key for a device's reading history (sorted set scored by unix ms)
// Pattern: sensor:colorlux:{device}
func HistoryKey(device string) string {
	return fmt.Sprintf("sensor:colorlux:%s", device)
}

// MetaKey returns the key for a device's last-event metadata (hash)
// Pattern: meta:colorlux:{device}
func MetaKey(device string) string {
	return fmt.Sprintf("meta:colorlux:%s", device)
}
