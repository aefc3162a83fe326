package monitor

import (
	"fmt"

	"github.com/sossh/Work-Alone/internal/model"
)

const msgInfo = "Work-Alone System - Available Commands\n\n" +
	"\"BEGIN\"\nStart a new Work-Alone session.\n\n" +
	"\"DONE\"\nEnd your active Work-Alone session.\n\n" +
	"\"INFO\"\nShow available commands.\n\n" +
	"(any message)\nCounts as a check-in during an active session."

const msgSessionEnded = "Your Work-Alone session has been ended. Stay safe!"

const msgCheckInRecorded = "Thank you for your response. Your check-in has been recorded."

const msgReminder = "This is a reminder from the Work-Alone System.\n\n" +
	"Please reply with anything to this message so we can confirm that you are safe, " +
	"or reply \"DONE\" if you are finished working alone."

const msgCallSay = "This is a reminder from the Work-Alone System. " +
	"Please respond with a message so we can confirm your safety."

const msgContactsNotified = "Your escalation contacts have been notified due to inactivity."

const msgAllAccounted = "All users are currently accounted for, no action is needed. Thanks for checking in!"

const msgMarkedSafe = "Thanks for checking on them, the user has now been marked as safe. " +
	"We appreciate your quick response."

func beginConfirmation(delayMinutes int) string {
	return fmt.Sprintf("Your Work-Alone session is now active.\n\n"+
		"Please reply \"DONE\" when you have finished working alone.\n"+
		"You will receive a check-in message in %s.", minutesText(delayMinutes))
}

func callFollowUp(delayMinutes int) string {
	return fmt.Sprintf("This is a reminder from the Work-Alone System.\n"+
		"If you are finished working alone reply \"DONE\" to end the session.\n"+
		"Please reply within %s.\n"+
		"If we do not hear from you, your designated contacts will be notified to check on you.",
		minutesText(delayMinutes))
}

func contactAlert(user *model.User, elapsed string) string {
	return fmt.Sprintf("This is a notification from the Work-Alone System. "+
		"%s %s at %s has not responded for %s.\n"+
		"Please check on them as soon as possible.\n\n"+
		"Once you have made sure they are okay, reply \"SAFE\" to log that they are safe.",
		user.FirstName, user.LastName, user.PhoneNumber, elapsed)
}

func outstandingListing(users []*model.User) string {
	msg := "You have multiple users who have not checked in:\n\n"
	for _, u := range users {
		msg += fmt.Sprintf("%s %s -> %d\n\n", u.FirstName, u.LastName, u.ID)
	}
	msg += "To mark someone as safe, reply with: SAFE <user id>\n\nFor example: SAFE 42"
	return msg
}
