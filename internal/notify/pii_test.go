package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func TestScrubPII(t *testing.T) {
	in := "Reach John at john.doe@example.com or +1 (555) 123-4567 about the gripper."
	assert.Equal(t, "Reach John at [EMAIL] or [PHONE] about the gripper.", ScrubPII(in))
}

func TestHashEmailIsStable(t *testing.T) {
	a := HashEmail("John@Example.com ")
	b := HashEmail("john@example.com")
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, HashEmail("jane@example.com"))
}

func TestPreviewTruncatesAndFlattens(t *testing.T) {
	body := "line one\nline two " + strings.Repeat("x", 300)
	got := preview(body)
	assert.True(t, strings.HasPrefix(got, "line one line two "))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Len(t, []rune(got), previewLen+1)
}

func TestStubSenderLogsScrubbedPreview(t *testing.T) {
	var buf bytes.Buffer
	sender := NewStubEmailSender(logging.NewWithWriter("info", &buf))

	err := sender.Send(context.Background(), EmailMessage{
		To:      "team@sshrobotics.com",
		Subject: "New contact submission: John Doe (robotics)",
		Body:    "Email: john@example.com\nPhone: 555-123-4567",
		ReplyTo: "john@example.com",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "john@example.com")
	assert.NotContains(t, out, "555-123-4567")
	assert.Contains(t, out, "[EMAIL]")
	assert.Contains(t, out, HashEmail("john@example.com"))
}
