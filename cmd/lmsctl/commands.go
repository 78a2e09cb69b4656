package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-lms-client/client"
	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/internal/utils"
	"github.com/jrsteele09/go-lms-client/lms"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/token"
)

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	role := fs.String("role", string(session.RoleStudent), "student or teacher")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("LMS_PASSWORD"), "account password (or LMS_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	profile, err := a.api.Login(ctx, session.Role(*role), lms.Credentials{Email: *email, Password: *password})
	if err != nil {
		var apiErr *client.APIError
		if lmserrors.As(err, &apiErr) {
			a.console.ShowError(apiErr.Detail())
			return fmt.Errorf("login failed: %d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
		}
		return err
	}

	var who struct {
		FullName string `json:"full_name"`
	}
	_ = json.Unmarshal(profile, &who)
	a.console.ShowSuccess(fmt.Sprintf("Logged in as %s (%s)", who.FullName, *role))
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.console.ShowInfo("Logged out")
	return nil
}

func (a *app) whoami(s session.Session) error {
	if !s.IsAuthenticated() {
		a.console.ShowWarning("Not logged in")
		return nil
	}
	var who struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	_ = json.Unmarshal(s.Profile, &who)

	bearer := token.Bearer(s.AccessToken)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "role\t%s\n", s.Role)
	fmt.Fprintf(w, "id\t%d\n", who.ID)
	fmt.Fprintf(w, "name\t%s\n", who.FullName)
	fmt.Fprintf(w, "email\t%s\n", who.Email)
	if !bearer.Expiry.IsZero() {
		state := "valid"
		if !bearer.Valid() {
			state = "expired, will refresh on next request"
		}
		fmt.Fprintf(w, "access token\t%s until %s\n", state, bearer.Expiry.Local().Format(time.RFC1123))
	}
	return w.Flush()
}

func (a *app) categories(ctx context.Context) error {
	categories, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Title)
	}
	return w.Flush()
}

func (a *app) courses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("courses", flag.ContinueOnError)
	search := fs.String("search", "", "title search")
	category := fs.Int64("category", 0, "category id")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params := url.Values{}
	if *search != "" {
		params.Set("search", *search)
	}
	if *category > 0 {
		params.Set("category", strconv.FormatInt(*category, 10))
	}
	if *page > 1 {
		params.Set("page", strconv.Itoa(*page))
	}

	result, err := a.api.Courses(ctx, params)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tRATING")
	for _, c := range result.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\n", c.ID, c.Title, utils.ValueOr(c.DiscountPrice, c.Price), c.AverageRating)
	}
	fmt.Fprintf(w, "\n%d course(s)\n", result.Count)
	if utils.Value(result.Next) != "" {
		fmt.Fprintf(w, "more: -page %d\n", max(*page, 1)+1)
	}
	return w.Flush()
}

func (a *app) course(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("course", flag.ContinueOnError)
	id := fs.Int64("id", 0, "course id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	course, err := a.api.Course(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(course)
}

func (a *app) profile(ctx context.Context) error {
	teacher, err := a.api.TeacherProfile(ctx)
	if err != nil {
		return err
	}
	return printJSON(teacher)
}

// get issues an authenticated GET to any API path and prints the raw body.
func (a *app) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("get requires exactly one PATH")
	}
	resp, err := a.client.Do(ctx, &client.Request{Method: http.MethodGet, Path: args[0]})
	if err != nil {
		return err
	}
	var body any
	if err := resp.Decode(&body); err != nil {
		_, werr := os.Stdout.Write(resp.Body)
		return werr
	}
	return printJSON(body)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
