package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/seed-hypermedia/mintter-sub004/internal/mapper"
	"github.com/seed-hypermedia/mintter-sub004/internal/model"
	"github.com/seed-hypermedia/mintter-sub004/pkg/database"
	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// inspect_document prints the flat blocks of a Lexical state, either from a
// JSON file or from a stored document, and checks that it round-trips.
func main() {
	file := flag.String("file", "", "path to a Lexical editor state JSON file")
	id := flag.String("id", "", "id of a stored document")
	flag.Parse()

	var doc lexical.Document
	switch {
	case *file != "":
		doc = fromFile(*file)
	case *id != "":
		doc = fromDatabase(*id)
	default:
		flag.Usage()
		os.Exit(2)
	}

	for i, block := range doc.Blocks {
		printBlock(i, block, 0)
	}

	root, err := lexical.DecodeDocument(doc)
	if err != nil {
		color.Red("Decode failed: %v", err)
		os.Exit(1)
	}
	again, err := lexical.EncodeDocument(root)
	if err != nil {
		color.Red("Re-encode failed: %v", err)
		os.Exit(1)
	}
	if reflect.DeepEqual(again, doc) {
		color.Green("\nRound trip: identical")
	} else {
		color.Red("\nRound trip: blocks differ after decode/encode")
	}

	md, err := lexical.NewRenderer().Render(doc)
	if err != nil {
		color.Red("Render failed: %v", err)
		os.Exit(1)
	}
	color.Cyan("\n--- MARKDOWN ---")
	fmt.Print(md)
	color.Cyan("--- END MARKDOWN ---")
}

func fromFile(path string) lexical.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	root, err := lexical.ParseRoot(data)
	if err != nil {
		log.Fatalf("Error: not a Lexical editor state: %v", err)
	}
	doc, err := lexical.EncodeDocument(root)
	if err != nil {
		log.Fatalf("Error: cannot flatten: %v", err)
	}
	return doc
}

func fromDatabase(id string) lexical.Document {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var m model.Document
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		log.Fatal("Document not found:", err)
	}
	e, err := mapper.NewDocumentMapper().ToEntity(&m)
	if err != nil {
		log.Fatal(err)
	}
	color.Cyan("INSPECTING DOCUMENT: %s (%s) v%d", e.Title, e.Id, e.Version)
	return e.Content
}

func printBlock(i int, block lexical.FlatBlock, depth int) {
	indent := strings.Repeat("  ", depth)
	header := block.Type
	if block.Tag != "" {
		header += " <" + block.Tag + ">"
	}
	color.Yellow("%s[%d] %s", indent, i, header)
	if block.Text != "" {
		fmt.Printf("%s    text: %q (%d code points)\n", indent, block.Text, lexical.CodePointLength(block.Text))
	}
	for _, layer := range block.Layers {
		attrs := ""
		if len(layer.Attributes) > 0 {
			attrs = fmt.Sprintf(" %v", layer.Attributes)
		}
		fmt.Printf("%s    %s%s %v\n", indent, color.GreenString(layer.Kind), attrs, layer.Intervals)
	}
	if err := block.Validate(); err != nil {
		color.Red("%s    invalid: %v", indent, err)
	}
	for j, child := range block.Children {
		printBlock(j, child, depth+1)
	}
}
