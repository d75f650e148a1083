// Command wardrobe is the command-line client for the wardrobe service.
//
//	wardrobe [global flags] <command> [flags] [args]
//
// Commands: login, signup, social, logout, whoami, list, save, categorize,
// delete, options, share. Run "wardrobe help" for details.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"wardrobe-client/internal/app"
	"wardrobe-client/internal/config"
	"wardrobe-client/internal/lifetime"
	"wardrobe-client/internal/model"
	"wardrobe-client/internal/options"
	"wardrobe-client/internal/service"
	"wardrobe-client/internal/storage"
	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/logging"
)

const usage = `Usage: wardrobe [global flags] <command> [flags] [args]

Commands:
  login       --user NAME --password PASS     sign in with email or username
  signup      --email E --username U --password P [--first F --last L]
  social      --email E [--username U --first F --last L]
  logout                                       forget the signed-in user
  whoami                                       show the signed-in user
  list        [--ownership own|wishlist] [--q TEXT]
  save        URL                              save a product link
  categorize  --ownership own|wishlist --category C --subcategory S ITEM_ID
  delete      [--yes] ITEM_ID                  delete an item after confirming
  options     categories|subcategories        show remembered suggestions
  share       ITEM_ID                          print share text for an item

Global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	app    *app.App
	scope  *lifetime.Scope
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wardrobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	backendFlag := fs.String("backend", "", "Override backend base URL (BACKEND_BASE_URL)")
	storageFlag := fs.String("storage", "", "Storage type: memory|sqlite|mysql|postgres|redis (STORAGE_TYPE)")
	pathFlag := fs.String("storage-path", "", "SQLite database path (STORAGE_PATH)")
	levelFlag := fs.String("log-level", "", "Log level: debug|info|warn|error (LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || fs.Arg(0) == "help" {
		fs.Usage()
		return 2
	}

	cfg, err := config.Process()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if *backendFlag != "" {
		cfg.Backend.BaseURL = *backendFlag
	}
	if *storageFlag != "" {
		cfg.Storage.Type = *storageFlag
	}
	if *pathFlag != "" {
		cfg.Storage.Path = *pathFlag
	}
	if *levelFlag != "" {
		cfg.App.LogLevel = *levelFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	logger := logging.New(stderr, logging.ParseLevel(cfg.App.LogLevel))

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		fmt.Fprintln(stderr, "Error: open storage:", err)
		return 1
	}
	defer store.Close()

	scope := lifetime.New(ctx)
	defer scope.Close()

	c := &cli{
		app:    app.New(cfg, store, nil, logger),
		scope:  scope,
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}

	if err := c.dispatch(fs.Arg(0), fs.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, "Error:", ue.msg)
			return 2
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Cancelled.")
			return 130
		}
		fmt.Fprintln(stderr, "Error:", apierror.MessageOf(err))
		return 1
	}
	return 0
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func (c *cli) dispatch(cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(args)
	case "signup":
		return c.signup(args)
	case "social":
		return c.social(args)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami()
	case "list":
		return c.list(args)
	case "save":
		return c.save(args)
	case "categorize":
		return c.categorize(args)
	case "delete":
		return c.delete(args)
	case "options":
		return c.options(args)
	case "share":
		return c.share(args)
	default:
		return usageError{msg: fmt.Sprintf("unknown command %q", cmd)}
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, usageError{msg: err.Error()}
	}
	if fs.NArg() != positional {
		return nil, usageError{msg: fmt.Sprintf("%s expects %d argument(s), got %d", fs.Name(), positional, fs.NArg())}
	}
	return fs.Args(), nil
}

func (c *cli) greet(sess *model.Session) {
	fmt.Fprintf(c.stdout, "Hello, %s\n", sess.Greeting())
}

func (c *cli) login(args []string) error {
	fs := c.flags("login")
	user := fs.String("user", "", "Email or username")
	password := fs.String("password", "", "Password")
	if _, err := c.parse(fs, args, 0); err != nil {
		return err
	}

	sess, err := lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (*model.Session, error) {
		return c.app.Auth.Login(ctx, model.Credentials{EmailOrUsername: *user, Password: *password})
	})
	if err != nil {
		return err
	}
	c.greet(sess)
	return nil
}

func (c *cli) signup(args []string) error {
	fs := c.flags("signup")
	reg := model.Registration{}
	fs.StringVar(&reg.Email, "email", "", "Email")
	fs.StringVar(&reg.Username, "username", "", "Username")
	fs.StringVar(&reg.Password, "password", "", "Password")
	fs.StringVar(&reg.FirstName, "first", "", "First name")
	fs.StringVar(&reg.LastName, "last", "", "Last name")
	if _, err := c.parse(fs, args, 0); err != nil {
		return err
	}

	sess, err := lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (*model.Session, error) {
		return c.app.Auth.Signup(ctx, reg)
	})
	if err != nil {
		return err
	}
	c.greet(sess)
	return nil
}

func (c *cli) social(args []string) error {
	fs := c.flags("social")
	profile := model.SocialProfile{}
	fs.StringVar(&profile.Email, "email", "", "Email from the identity provider")
	fs.StringVar(&profile.Username, "username", "", "Username (defaults to email)")
	fs.StringVar(&profile.FirstName, "first", "", "First name (defaults to User)")
	fs.StringVar(&profile.LastName, "last", "", "Last name")
	if _, err := c.parse(fs, args, 0); err != nil {
		return err
	}

	sess, err := lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (*model.Session, error) {
		return c.app.Auth.SocialLogin(ctx, profile)
	})
	if err != nil {
		return err
	}
	c.greet(sess)
	return nil
}

func (c *cli) logout() error {
	if err := c.app.Auth.Logout(c.scope.Context()); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Signed out.")
	return nil
}

func (c *cli) whoami() error {
	sess, err := c.app.Auth.Current(c.scope.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s (%s) id=%s\n", sess.Greeting(), sess.Username, sess.UserID)
	return nil
}

func (c *cli) list(args []string) error {
	fs := c.flags("list")
	ownership := fs.String("ownership", "", "Show a wardrobe tab: own|wishlist")
	q := fs.String("q", "", "Filter by title, site or category")
	if _, err := c.parse(fs, args, 0); err != nil {
		return err
	}

	items, err := lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) ([]model.Item, error) {
		if *ownership == "" {
			return c.app.Capture.Refresh(ctx)
		}
		return c.app.Wardrobe.Browse(ctx, model.ParseOwnership(*ownership))
	})
	if err != nil {
		return err
	}

	items = service.Filter(items, *q)
	fmt.Fprintf(c.stdout, "Hi, %s\n", c.app.Wardrobe.Greeting(c.scope.Context()))
	if len(items) == 0 {
		fmt.Fprintln(c.stdout, "No items.")
		return nil
	}
	printItems(c.stdout, items)
	return nil
}

func (c *cli) save(args []string) error {
	pos, err := c.parse(c.flags("save"), args, 1)
	if err != nil {
		return err
	}

	res, err := lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (*service.CaptureResult, error) {
		// The duplicate check only sees what is loaded.
		if _, err := c.app.Capture.Refresh(ctx); err != nil {
			if apierror.KindOf(err) == apierror.KindAuth {
				return nil, err
			}
			c.app.Logger.Warn("Could not load items before saving", "error", err)
		}
		return c.app.Capture.Submit(ctx, pos[0])
	})
	if err != nil {
		return err
	}

	if res.Duplicate {
		fmt.Fprintln(c.stdout, "Already in your wardrobe.")
		return nil
	}
	fmt.Fprintln(c.stdout, "Item added to your wardrobe.")
	printItems(c.stdout, []model.Item{*res.Item})
	return nil
}

func (c *cli) categorize(args []string) error {
	fs := c.flags("categorize")
	var cat model.Categorization
	ownership := fs.String("ownership", "", "own|wishlist")
	fs.StringVar(&cat.Category, "category", "", "Category")
	fs.StringVar(&cat.Subcategory, "subcategory", "", "Subcategory")
	pos, err := c.parse(fs, args, 1)
	if err != nil {
		return err
	}
	cat.Ownership = model.Ownership(*ownership)

	_, err = lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.app.Categorize.Submit(ctx, pos[0], cat)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Saved.")
	return nil
}

func (c *cli) delete(args []string) error {
	fs := c.flags("delete")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	pos, err := c.parse(fs, args, 1)
	if err != nil {
		return err
	}

	confirmation := c.app.Deletes.Request(pos[0])
	if !*yes {
		fmt.Fprint(c.stdout, "Are you sure you want to delete this item? [y/N] ")
		answer, _ := c.stdin.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			c.app.Deletes.Cancel(confirmation.Token)
			fmt.Fprintln(c.stdout, "Cancelled.")
			return nil
		}
	}

	_, err = lifetime.Run(c.scope.Context(), c.scope, func(ctx context.Context) (string, error) {
		return c.app.Deletes.Confirm(ctx, confirmation.Token)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Item removed from your wardrobe.")
	return nil
}

func (c *cli) options(args []string) error {
	pos, err := c.parse(c.flags("options"), args, 1)
	if err != nil {
		return err
	}
	list, err := options.ParseList(pos[0])
	if err != nil {
		return usageError{msg: err.Error()}
	}

	values, err := c.app.Options.Load(c.scope.Context(), list)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(c.stdout, v)
	}
	return nil
}

func (c *cli) share(args []string) error {
	pos, err := c.parse(c.flags("share"), args, 1)
	if err != nil {
		return err
	}

	if _, err := lifetime.Run(c.scope.Context(), c.scope, c.app.Capture.Refresh); err != nil {
		return err
	}
	item, ok := c.app.Capture.Find(pos[0])
	if !ok {
		return apierror.NotFound("Unable to share the item.")
	}
	fmt.Fprintln(c.stdout, item.ShareText())
	return nil
}

func printItems(w io.Writer, items []model.Item) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSITE\tOWNERSHIP\tCATEGORY")
	for _, item := range items {
		category := item.Category
		if item.Subcategory != "" {
			category += " / " + item.Subcategory
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Title, item.DisplayPrice(), item.SiteName, item.Ownership, category)
	}
	_ = tw.Flush()
}
