package mail

import (
	"fmt"
	"time"

	"github.com/spec-kit/civictrack/internal/domain"
)

// IssueReceived builds the notice sent to a reporter when their ticket is
// created.
func IssueReceived(to, title string, category domain.Category) Message {
	body := "Hello,\n\n" +
		"Thank you for reporting a civic issue in your area.\n\n" +
		"Issue Summary:\n" +
		fmt.Sprintf("Title: %s\n", title) +
		fmt.Sprintf("Category: %s\n", category) +
		"Status: Reported\n\n" +
		"Your report helps make your neighborhood better. Our local authorities or community moderators will review the issue soon.\n" +
		"You will be notified when the status of your report changes.\n\n" +
		"-\nCivicTrack Team\n"

	return Message{
		To:      to,
		Subject: "Your Issue Has Been Reported | CivicTrack",
		Body:    body,
	}
}

// StatusUpdated builds the notice sent to a reporter when an admin changes
// their ticket's status.
func StatusUpdated(to, title string, status domain.TicketStatus, at time.Time) Message {
	body := "Hello,\n\n" +
		"There is an update on the issue you reported:\n\n" +
		fmt.Sprintf("Issue: %s\n", title) +
		fmt.Sprintf("New Status: %s\n", status) +
		fmt.Sprintf("Updated At: %s\n\n", at.Format(time.RFC1123)) +
		"Thank you for helping improve your neighborhood. You can track the issue on the CivicTrack map.\n\n" +
		"-\nCivicTrack Team\n"

	return Message{
		To:      to,
		Subject: "Update on Your Reported Issue | CivicTrack",
		Body:    body,
	}
}
