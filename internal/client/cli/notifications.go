package cli

import (
	"context"
	"fmt"
)

// Notifications views and manages the local notification feed.
//
// Usage:
//
//	notifications             — list notifications, newest first
//	notifications read <id>   — mark one notification as read
//	notifications readall     — mark every notification as read
//	notifications clear       — remove all notifications
func (a *App) Notifications(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		items := a.feed.All()
		if len(items) == 0 {
			printlnFn("No notifications.")
			return nil
		}
		for _, n := range items {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			printlnFn(fmt.Sprintf("%s %s  [%s] %s — %s", marker, n.ID, n.Type, n.Title, n.Message))
		}
		printlnFn(fmt.Sprintf("%d unread", a.feed.Unread()))
		return nil
	}

	switch args[0] {
	case "read":
		if len(args) < 2 {
			printlnFn("Usage: notifications read <id>")
			return fmt.Errorf("notification id is required")
		}
		if err := a.feed.MarkRead(args[1]); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		return nil

	case "readall":
		if err := a.feed.MarkAllRead(); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		return nil

	case "clear":
		if err := a.feed.Clear(); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn("Notifications cleared")
		return nil

	default:
		printlnFn("Unknown notifications command:", args[0])
		return fmt.Errorf("unknown notifications command: %s", args[0])
	}
}
