package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jongio/azd-toast/cliout"
	"github.com/jongio/azd-toast/toast"
)

type templateInfo struct {
	Template string `json:"template"`
	Lines    int    `json:"lines"`
	Image    bool   `json:"image"`
	XML      string `json:"xml,omitempty"`
}

func newTemplateCommand(_ *app) *cobra.Command {
	var (
		image bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "template [line...]",
		Short: "Show which template a set of lines selects, or list all templates",
		Example: `  toast template "Short" "A much longer second line"
  toast template --image "Title"
  toast template --list`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return printTemplateList()
			}
			if len(args) == 0 {
				return errNoLines
			}
			return printSelectedTemplate(args, image)
		},
	}

	cmd.Flags().BoolVar(&image, "image", false, "Select from the image templates")
	cmd.Flags().BoolVar(&list, "list", false, "List every template")
	return cmd
}

func printTemplateList() error {
	var infos []templateInfo
	var rows []cliout.TableRow
	for _, t := range toast.Templates() {
		infos = append(infos, templateInfo{Template: t.String(), Lines: t.LineCount(), Image: t.HasImage()})
		rows = append(rows, cliout.TableRow{
			"Template": t.String(),
			"Lines":    strconv.Itoa(t.LineCount()),
			"Image":    strconv.FormatBool(t.HasImage()),
		})
	}
	return cliout.Print(infos, func() {
		cliout.Table([]string{"Template", "Lines", "Image"}, rows)
	})
}

func printSelectedTemplate(lines []string, image bool) error {
	t, err := toast.SelectTemplate(lines, image)
	if err != nil {
		return err
	}
	doc, err := toast.Catalog{}.TemplateContent(t)
	if err != nil {
		return err
	}
	doc.Indent(2)
	xml, err := doc.WriteToString()
	if err != nil {
		return err
	}

	info := templateInfo{Template: t.String(), Lines: t.LineCount(), Image: t.HasImage(), XML: xml}
	return cliout.Print(info, func() {
		cliout.Label("Template", cliout.Highlight("%s", info.Template))
		cliout.Label("Text slots", strconv.Itoa(info.Lines))
		cliout.Plain("%s", strings.TrimRight(xml, "\n"))
	})
}
