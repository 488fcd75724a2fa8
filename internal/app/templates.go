package app

import "fmt"

type operation struct {
	name     string
	summary  string
	detailed string
}

var (
	opListBooks = operation{
		name:    "get_books",
		summary: "Listing all books",
		detailed: `    function: {{.Func}},
    id: {{.Args.ID}},
    title: {{.Args.Title}},
    id__lt: {{.Args.IDLt}},
    id__gt: {{.Args.IDGt}},
    return: {{.Result}},
    error: {{.Error}}`,
	}
	opAddBook = operation{
		name:    "add_book",
		summary: "Adding a new book",
		detailed: `    function: {{.Func}},
    book: {{.Args}},
    return: {{.Result}},
    error: {{.Error}}`,
	}
	opGetBook = operation{
		name:    "get_book",
		summary: "Fetching a book",
		detailed: `    function: {{.Func}},
    book_id: {{.Args}},
    return: {{.Result}},
    error: {{.Error}}`,
	}
	opUpdateBook = operation{
		name:    "update_book",
		summary: "Updating a book",
		detailed: `    function: {{.Func}},
    book_id: {{.Args.ID}},
    title: {{.Args.Title}},
    return: {{.Result}},
    error: {{.Error}}`,
	}
	opDeleteBook = operation{
		name:    "delete_book",
		summary: "Deleting a book",
		detailed: `    function: {{.Func}},
    book_id: {{.Args}},
    return: {{.Result}},
    error: {{.Error}}`,
	}
)

func summaryTemplate(source Source, op operation) string {
	return fmt.Sprintf("[INFO] %s: %s", source, op.summary)
}

func detailedTemplate(source Source, op operation) string {
	return fmt.Sprintf("[INFO] %s: %s:\n%s", source, op.summary, op.detailed)
}
