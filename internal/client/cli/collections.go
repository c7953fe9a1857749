package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minbarcms/minbar/internal/models"
)

// Collections manages the locally stored collections.
//
// Usage:
//
//	collections                      — list collections
//	collections search <term...>     — filter by name or description
//	collections show <id>            — list a collection's entries
//	collections create               — create a collection (interactive)
//	collections rename <id>          — change name/description (interactive)
//	collections delete <id>          — delete a collection
//	collections add <id> <entryID>   — add an entry reference
//	collections remove <id> <entryID> — remove an entry reference
func (a *App) Collections(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.listCollections("")
	}

	switch args[0] {
	case "list":
		return a.listCollections("")

	case "search":
		return a.listCollections(strings.Join(args[1:], " "))

	case "show":
		id, err := collectionID(args[1:])
		if err != nil {
			printlnFn("Usage: collections show <id>")
			return err
		}
		return a.showCollection(id)

	case "create":
		name, err := getSimpleText(a.reader, "Enter collection name", os.Stdout)
		if err != nil {
			return err
		}
		description, err := getSimpleText(a.reader, "Enter description (optional)", os.Stdout)
		if err != nil {
			return err
		}
		c, err := a.collections.Create(name, description)
		if err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn(fmt.Sprintf("Created collection %d (%s)", c.ID, c.Name))
		return nil

	case "rename":
		id, err := collectionID(args[1:])
		if err != nil {
			printlnFn("Usage: collections rename <id>")
			return err
		}
		name, err := getSimpleText(a.reader, "Enter new name", os.Stdout)
		if err != nil {
			return err
		}
		description, err := getSimpleText(a.reader, "Enter new description (optional)", os.Stdout)
		if err != nil {
			return err
		}
		if err := a.collections.Rename(id, name, description); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn("Collection updated")
		return nil

	case "delete":
		id, err := collectionID(args[1:])
		if err != nil {
			printlnFn("Usage: collections delete <id>")
			return err
		}
		if err := a.collections.Delete(id); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn("Collection deleted")
		return nil

	case "add":
		id, entryID, err := collectionEntryArgs(args[1:])
		if err != nil {
			printlnFn("Usage: collections add <id> <entryID>")
			return err
		}
		added, err := a.collections.AddEntry(id, entryID)
		if err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		if !added {
			printlnFn("Entry already in collection")
			return nil
		}
		printlnFn("Entry added to collection")
		return nil

	case "remove":
		id, entryID, err := collectionEntryArgs(args[1:])
		if err != nil {
			printlnFn("Usage: collections remove <id> <entryID>")
			return err
		}
		if err := a.collections.RemoveEntry(id, entryID); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn("Entry removed from collection")
		return nil

	default:
		printlnFn("Unknown collections command:", args[0])
		return fmt.Errorf("unknown collections command: %s", args[0])
	}
}

func collectionID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("collection id is required")
	}
	return strconv.ParseInt(args[0], 10, 64)
}

func collectionEntryArgs(args []string) (int64, string, error) {
	if len(args) < 2 {
		return 0, "", fmt.Errorf("collection id and entry id are required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", err
	}
	return id, args[1], nil
}

func (a *App) listCollections(term string) error {
	var (
		cols []models.Collection
		err  error
	)
	if term == "" {
		cols, err = a.collections.List()
	} else {
		cols, err = a.collections.Search(term)
	}
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if len(cols) == 0 {
		printlnFn("No collections found.")
		return nil
	}
	for _, c := range cols {
		line := fmt.Sprintf("%d  %s (%d entries)", c.ID, c.Name, len(c.EntryIDs))
		if c.Description != "" {
			line += "  — " + c.Description
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) showCollection(id int64) error {
	c, err := a.collections.Get(id)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn(c.Name)
	if c.Description != "" {
		printlnFn(c.Description)
	}

	entries := a.collections.Resolve(c, a.cache)
	if len(entries) == 0 {
		printlnFn("No entries.")
		return nil
	}
	for _, e := range entries {
		printlnFn(formatEntryLine(e))
	}
	return nil
}
