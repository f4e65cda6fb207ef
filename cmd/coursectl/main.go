// Command coursectl browses the marketplace catalog and buys courses from
// a terminal.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
	"github.com/jcmexdev/course-marketplace/internal/catalog"
	"github.com/jcmexdev/course-marketplace/internal/checkout"
	"github.com/jcmexdev/course-marketplace/internal/pkg/telemetry"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "coursectl",
		Usage: "Browse the course catalog and buy courses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "TOML profile with base_url (server root), token and gateway_key",
				Value:   defaultProfilePath(),
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "API base URL (overrides profile)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Before: func(c *cli.Context) error {
			telemetry.InitLogger(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "categories",
				Usage:  "List categories",
				Action: listCategories,
			},
			{
				Name:      "catalog",
				Usage:     "Show a category page",
				ArgsUsage: "<slug>",
				Action:    showCatalog,
			},
			{
				Name:      "create-category",
				Usage:     "Create a category (admin token required)",
				ArgsUsage: "<name> <description>",
				Action:    createCategory,
			},
			{
				Name:  "checkout",
				Usage: "Buy one or more courses",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "course", Aliases: []string{"c"}, Usage: "course id, repeatable", Required: true},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "email"},
				},
				Action: buyCourses,
			},
		},
	}
}

func setup(c *cli.Context) (profile, *apiclient.Client, error) {
	p, err := loadProfile(c.String("profile"))
	if err != nil {
		return p, nil, err
	}
	if u := c.String("base-url"); u != "" {
		p.BaseURL = u
	}
	return p, apiclient.New(p.BaseURL), nil
}

func listCategories(c *cli.Context) error {
	_, api, err := setup(c)
	if err != nil {
		return err
	}
	categories, err := api.ListCategories(c.Context)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		fmt.Fprintf(c.App.Writer, "%-24s %s\n", catalog.Slug(cat.Name), cat.Description)
	}
	return nil
}

func showCatalog(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: coursectl catalog <slug>", 2)
	}
	_, api, err := setup(c)
	if err != nil {
		return err
	}
	view, err := catalog.NewPage(api).Load(c.Context, c.Args().First())
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return cli.Exit("no such category", 1)
	}
	if err != nil {
		return err
	}
	w := c.App.Writer
	if view == nil {
		fmt.Fprintln(w, "No courses in this category yet.")
		return nil
	}

	fmt.Fprintf(w, "%s\n%s\n\n", view.Name, view.Description)
	printCourses(c, "Courses to get you started", view.Selected)
	if view.Different != nil {
		printCourses(c, "Top courses in "+view.Different.Name, view.Different.Courses)
	}
	printCourses(c, "Frequently bought", view.TopSellers())
	return nil
}

func printCourses(c *cli.Context, title string, courses []apiclient.Course) {
	w := c.App.Writer
	fmt.Fprintln(w, title)
	for _, course := range courses {
		fmt.Fprintf(w, "  %-28s %-40s %10s  %d students\n",
			course.ID, course.Name, formatAmount(course.Price, ""), course.StudentsEnrolled)
	}
	fmt.Fprintln(w)
}

func createCategory(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: coursectl create-category <name> <description>", 2)
	}
	p, api, err := setup(c)
	if err != nil {
		return err
	}
	resp, err := api.CreateCategory(c.Context, p.Token, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	if !resp.Success {
		return cli.Exit(resp.Message, 1)
	}
	fmt.Fprintln(c.App.Writer, resp.Message)
	return nil
}

func buyCourses(c *cli.Context) error {
	p, api, err := setup(c)
	if err != nil {
		return err
	}
	purchaser := checkout.Purchaser{FirstName: p.FirstName, Email: p.Email}
	if v := c.String("first-name"); v != "" {
		purchaser.FirstName = v
	}
	if v := c.String("email"); v != "" {
		purchaser.Email = v
	}

	w := c.App.Writer
	sess := &session{out: w, cart: c.StringSlice("course")}
	orch := checkout.NewOrchestrator(checkout.Config{GatewayKey: p.GatewayKey}, checkout.Deps{
		API:     api,
		Scripts: checkout.NewScriptLoader(checkout.HTTPFetcher{}),
		Widget:  &terminalWidget{in: bufio.NewReader(os.Stdin), out: w, sandboxSecret: p.SandboxSecret},
		UI:      terminalUI{out: w},
		Cart:    sess,
		Nav:     sess,
		Loading: sess,
	})
	defer orch.Wait()

	err = orch.BuyCourses(c.Context, p.Token, sess.cart, purchaser)
	var cerr *checkout.Error
	if errors.As(err, &cerr) {
		slog.Debug("checkout ended", "courses", strings.Join(c.StringSlice("course"), ","), "error", cerr.Cause)
		if errors.Is(err, checkout.ErrCancelled) {
			return nil
		}
		return cli.Exit("", 1)
	}
	return err
}
