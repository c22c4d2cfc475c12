// Package share formats events for people: an email link for a single event,
// and SNS publication of single events or a whole day's agenda.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
)

// SNS subjects are capped at 100 characters.
const maxSubjectLen = 100

// SNSAPI is the part of *sns.Client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Message returns the subject and plain-text body used to share event.
func Message(event calendar.Event) (subject, body string) {
	subject = "Event Reminder: " + event.Title

	var b strings.Builder
	b.WriteString("Hi there,\n\n")
	b.WriteString("Here are the details for an upcoming event:\n\n")
	fmt.Fprintf(&b, "Event: %s\n", event.Title)
	fmt.Fprintf(&b, "Date: %s\n", event.Date)
	fmt.Fprintf(&b, "Time: %s\n", event.Time.Short())
	fmt.Fprintf(&b, "Description: %s", event.Description)

	return subject, b.String()
}

// MailtoURL builds a mailto: link with no recipient that opens a prefilled
// draft in the user's mail client.
func MailtoURL(event calendar.Event) string {
	subject, body := Message(event)
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent percent-encodes s for a mailto header value. Spaces become
// %20 since mail clients do not treat '+' as a space.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Digest is one day's agenda.
type Digest struct {
	Date   string           `json:"date"`
	Events []calendar.Event `json:"events"`
}

func (d Digest) Subject() string {
	return "Events on " + d.Date
}

func (d Digest) Body() string {
	if len(d.Events) == 0 {
		return d.Subject() + "\n\nNo events found for this day."
	}

	var b strings.Builder
	b.WriteString(d.Subject())
	b.WriteString("\n")
	for _, event := range d.Events {
		fmt.Fprintf(&b, "\n%s  %s", event.Time.Short(), event.Title)
		if event.Description != "" {
			fmt.Fprintf(&b, " - %s", event.Description)
		}
	}
	return b.String()
}

type Publisher struct {
	Log      *logrus.Entry
	SNS      SNSAPI
	TopicARN string
}

// PublishEvent sends the share message for a single event to the topic.
func (p *Publisher) PublishEvent(ctx context.Context, event calendar.Event) (string, error) {
	subject, body := Message(event)
	return p.publish(ctx, subject, body)
}

// PublishDigest sends a day's agenda to the topic.
func (p *Publisher) PublishDigest(ctx context.Context, digest Digest) (string, error) {
	return p.publish(ctx, digest.Subject(), digest.Body())
}

func (p *Publisher) publish(ctx context.Context, subject, body string) (string, error) {
	if p.TopicARN == "" {
		return "", errors.New("error publishing to AWS SNS: no topic ARN configured")
	}

	subject = truncate(subject, maxSubjectLen)

	input := &sns.PublishInput{
		Message:  &body,
		Subject:  &subject,
		TopicArn: &p.TopicARN,
	}

	out, err := p.SNS.Publish(ctx, input)
	if err != nil {
		p.logger().WithError(err).Error()
		return "", fmt.Errorf("error publishing to AWS SNS topic %s: %w", p.TopicARN, err)
	}

	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}

	p.logger().WithFields(logrus.Fields{
		"topic":      p.TopicARN,
		"message_id": messageID,
	}).Info("published to AWS SNS")

	return messageID, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (p *Publisher) logger() *logrus.Entry {
	if p.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return p.Log
}
