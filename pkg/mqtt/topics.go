package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout: colorlux/{kind}/{device}[/{name}]
const (
	TopicRoot = "colorlux"

	// Event names under colorlux/event/{device}
	EventColor     = "color"
	EventAlert     = "alert"
	EventReference = "reference"

	// Command names under colorlux/command/{device}
	CommandButton = "button"

	PayloadOnline  = "online"
	PayloadOffline = "offline"

	// AllTopics matches every colorlux topic of every device
	AllTopics = TopicRoot + "/#"
)

// StateTopic carries the throttled state snapshot of a device
// Pattern: colorlux/sensor/{device}/state
func StateTopic(device string) string {
	return fmt.Sprintf("%s/sensor/%s/state", TopicRoot, device)
}

// EventTopic carries one-off events of a device
// Pattern: colorlux/event/{device}/{event}
func EventTopic(device, event string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicRoot, device, event)
}

// CommandTopic carries commands addressed to a device
// Pattern: colorlux/command/{device}/{command}
func CommandTopic(device, command string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicRoot, device, command)
}

// AvailabilityTopic holds the retained online/offline status of a device
// Pattern: colorlux/status/{device}
func AvailabilityTopic(device string) string {
	return fmt.Sprintf("%s/status/%s", TopicRoot, device)
}

// ParseTopic splits a colorlux topic into kind, device and the optional trailing name
func ParseTopic(topic string) (kind, device, name string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || len(parts) > 4 || parts[0] != TopicRoot {
		return "", "", "", false
	}
	if len(parts) == 4 {
		name = parts[3]
	}
	return parts[1], parts[2], name, true
}
