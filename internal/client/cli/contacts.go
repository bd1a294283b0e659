package cli

import (
	"context"
	"log"
	"strconv"

	"github.com/wh131462/stillalive/internal/client/models"
)

func (a *App) contacts(ctx context.Context) {
	list, err := a.store.ListContacts(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(list) == 0 {
		printlnFn("No contacts yet.")
		return
	}
	for i := range list {
		c := &list[i]
		line := c.ID + "  " + c.Name
		if c.Birthday != "" {
			line += "  (birthday " + c.Birthday + ")"
		}
		printlnFn(line)
	}
}

func (a *App) addContact(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if name == "" {
		printlnFn("Name is required.")
		return
	}

	birthday, err := GetSimpleText(a.reader, "Birthday (MM-DD, optional)", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}
	yearText, err := GetSimpleText(a.reader, "Birth year (optional)", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}
	year := 0
	if yearText != "" {
		if year, err = strconv.Atoi(yearText); err != nil {
			printlnFn("Invalid year:", yearText)
			return
		}
	}
	impression, err := GetMultiline(a.reader, "Impression (optional)", a.out)
	if err != nil {
		log.Println(err.Error())
		return
	}

	rec, err := a.store.SaveContact(ctx, &models.Contact{
		Name:       name,
		Birthday:   birthday,
		BirthYear:  year,
		Impression: impression,
	})
	if err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn("Saved contact", rec.ID)
}

func (a *App) delContact(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delcontact <id>")
		return
	}
	if err := a.store.SoftDeleteContact(ctx, args[0]); err != nil {
		log.Println(err.Error())
		return
	}
	printlnFn("Contact marked for deletion; it disappears for good after the next sync.")
}

func (a *App) birthdays(ctx context.Context, args []string) {
	monthDay := a.now().Format("01-02")
	if len(args) > 0 {
		monthDay = args[0]
	}
	list, err := a.store.ListContactsByBirthday(ctx, monthDay)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(list) == 0 {
		printlnFn("No birthdays on", monthDay)
		return
	}
	for i := range list {
		printlnFn(list[i].Name)
	}
}
