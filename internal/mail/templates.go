package mail

import "fmt"

const (
	qualifiedSubject = "Thanks for applying — you passed the initial screen"
	rejectedSubject  = "Thanks for applying — quick update"
)

// QualifiedMessage is sent to applicants who passed screening.
func QualifiedMessage(to, reason string) Message {
	return Message{
		To:      to,
		Subject: qualifiedSubject,
		Body: "Hi,\n\n" +
			"Your application appears to meet our senior full-stack criteria. " +
			"We'll be in touch with next steps.\n\n" +
			fmt.Sprintf("Reason: %s\n", reason),
	}
}

// RejectedMessage is sent by the notification sweep to applicants who did
// not pass screening.
func RejectedMessage(to, reason string) Message {
	return Message{
		To:      to,
		Subject: rejectedSubject,
		Body: "Hi,\n\n" +
			"Thank you for applying. For this role we’re prioritizing senior full-stack profiles " +
			"that explicitly mention React, Node.js. " +
			fmt.Sprintf("Reason: %s\n\n", reason) +
			"We appreciate your interest and encourage you to reapply when it’s a closer fit.\n",
	}
}
