// Package docs embeds the user documentation served by "pman topic".
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var topics embed.FS

// GetTopic returns the raw markdown of a single topic. The special name
// "*" expands to every topic, in order.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		all, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(all...)
	}
	content, err := topics.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics concatenates the markdown of several topics. A "*" in the
// list expands in place.
func GetTopics(names ...string) (string, error) {
	var b bytes.Buffer
	for _, name := range names {
		if name == "*" {
			all, err := GetAllTopics()
			if err != nil {
				return "", err
			}
			for _, topic := range all {
				content, err := GetTopic(topic)
				if err != nil {
					return "", err
				}
				b.WriteString(content)
				b.WriteString("\n")
			}
			continue
		}
		content, err := GetTopic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics lists the available topic names, sorted. The readme is the
// table of contents and is not itself a topic.
func GetAllTopics() ([]string, error) {
	entries, err := fs.Glob(topics, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := strings.TrimSuffix(entry, ".md")
		if name == "readme" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
