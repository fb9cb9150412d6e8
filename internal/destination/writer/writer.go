// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mia-platform/hooklog/internal/destination"
)

var _ destination.Sender = &writerDestination{}

type writerDestination struct {
	writer io.Writer

	lock sync.Mutex
}

// NewDestination returns a destination.Sender that prints every message to w instead of
// delivering it.
func NewDestination(w io.Writer) destination.Sender {
	return &writerDestination{
		writer: w,
	}
}

func (d *writerDestination) Send(_ context.Context, message *destination.Message) error {
	builder := new(strings.Builder)

	builder.WriteString("Send message:\n")
	builder.WriteString("\tUsername: " + message.Username + "\n")
	if message.AvatarURL != "" {
		builder.WriteString("\tAvatar: " + message.AvatarURL + "\n")
	}
	builder.WriteString("\tEmbeds: ")

	encoder := json.NewEncoder(builder)
	encoder.SetIndent("\t", "\t")
	if err := encoder.Encode(message.Embeds); err != nil {
		return err
	}
	builder.WriteString("\n")

	d.lock.Lock()
	defer d.lock.Unlock()
	_, err := fmt.Fprint(d.writer, builder.String())
	return err
}
