package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PromptForComplaint asks for the fields of a new complaint on out and reads
// the answers line by line from in.
func PromptForComplaint(in io.Reader, out io.Writer) (ComplaintInput, error) {
	scanner := bufio.NewScanner(in)
	ask := func(label string) (string, error) {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}
	askFloat := func(label string) (float64, error) {
		s, err := ask(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", strings.ToLower(label))
		}
		return v, nil
	}

	var c ComplaintInput
	var err error
	if c.Title, err = ask("Title"); err != nil {
		return c, err
	}
	if c.Title == "" {
		return c, errors.New("title is required")
	}
	if c.Description, err = ask("Description"); err != nil {
		return c, err
	}
	if c.Category, err = ask("Category"); err != nil {
		return c, err
	}
	if c.Latitude, err = askFloat("Latitude"); err != nil {
		return c, err
	}
	if c.Longitude, err = askFloat("Longitude"); err != nil {
		return c, err
	}
	if c.Address, err = ask("Address"); err != nil {
		return c, err
	}
	return c, nil
}
