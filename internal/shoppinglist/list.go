package shoppinglist

import (
	"strconv"
	"strings"
)

// Filename is the attachment name offered to clients.
const Filename = "shopping_list.txt"

// Item is one aggregated ingredient of a shopping list.
type Item struct {
	IngredientID uint
	Name         string
	Unit         string
	Amount       int
}

// String renders the item as "<name>: <amount> <unit>;".
func (i Item) String() string {
	return i.Name + ": " + strconv.Itoa(i.Amount) + " " + i.Unit + ";"
}

type List struct {
	Items []Item
}

func (l *List) Len() int {
	return len(l.Items)
}

func (l *List) Lines() []string {
	lines := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		lines = append(lines, item.String())
	}
	return lines
}

// Render joins the lines with "\n". An empty list renders as "".
func (l *List) Render() string {
	return strings.Join(l.Lines(), "\n")
}
