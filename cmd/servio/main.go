// servio is a terminal client for the services marketplace: directory,
// two-party chat with optimistic sends, and the notification feed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"servio/internal/api"
	"servio/internal/booking"
	"servio/internal/chat"
	"servio/internal/config"
	"servio/internal/domain"
	"servio/internal/handoff"
	"servio/internal/notification"
	"servio/internal/session"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.StateFile), 0700); err != nil {
		log.Fatal(err)
	}

	store, err := session.Open(cfg.StateFile)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	client := api.New(cfg.APIBaseURL, store)
	chatSvc := chat.NewService(client, store)
	notifSvc := notification.NewService(client, store, chatSvc)
	bookingSvc := booking.NewService(client, store)
	bus := handoff.NewBus(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, client, store, os.Args[2:])
	case "logout":
		err = store.Clear()
	case "users":
		err = runUsers(ctx, chatSvc, os.Args[2:])
	case "partners":
		err = runPartners(ctx, chatSvc)
	case "chat":
		err = runChat(ctx, chatSvc, bus, os.Args[2:])
	case "notifications":
		err = runNotifications(ctx, notifSvc, os.Args[2:])
	case "bookings":
		err = runBookings(ctx, bookingSvc, os.Args[2:])
	case "watch":
		err = runWatch(ctx, notifSvc)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: servio <command> [flags]

commands:
  login          -user <name> -pass <password>
  logout
  users          [-q <query>]
  partners
  chat           -with <userId>
  notifications  [-read <id>] [-read-all]
  bookings       [-provider <id>]
  watch`)
}

func runLogin(ctx context.Context, client *api.Client, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "user name")
	pass := fs.String("pass", "", "password")
	_ = fs.Parse(args)
	if *user == "" || *pass == "" {
		return fmt.Errorf("login requires -user and -pass")
	}

	body := struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}{UserName: *user, Password: *pass}
	var result struct {
		AuthToken string      `json:"authToken"`
		User      domain.User `json:"user"`
	}
	if err := client.Post(ctx, "/api/auth/login", body, &result); err != nil {
		return err
	}
	if err := store.SetCredentials(result.AuthToken, result.User.UserID, result.User.Role); err != nil {
		return err
	}

	fmt.Printf("signed in as %s (#%d, %s)\n", result.User.DisplayName(), result.User.UserID, result.User.Role)
	return nil
}

func runUsers(ctx context.Context, svc *chat.Service, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	query := fs.String("q", "", "name filter")
	_ = fs.Parse(args)

	for _, u := range svc.SearchUsers(ctx, *query) {
		fmt.Printf("%4d  %-16s  %-16s %s\n", u.UserID, u.Role, u.UserName, u.DisplayName())
	}
	return nil
}

func runPartners(ctx context.Context, svc *chat.Service) error {
	partners, err := svc.ConversationPartners(ctx)
	if err != nil {
		return err
	}
	if len(partners) == 0 {
		fmt.Println("no conversations yet")
		return nil
	}
	for _, u := range partners {
		fmt.Printf("%4d  %s\n", u.UserID, u.DisplayName())
	}
	return nil
}

func runChat(ctx context.Context, svc *chat.Service, bus *handoff.Bus, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	with := fs.Int64("with", 0, "user id to chat with")
	_ = fs.Parse(args)

	window := chat.NewWindow(svc, bus)
	window.Mount(ctx)

	if *with != 0 {
		target := domain.User{UserID: *with}
		for _, u := range svc.AllUsers(ctx) {
			if u.UserID == *with {
				target = u
				break
			}
		}
		if err := window.OpenConversation(ctx, target); err != nil {
			return err
		}
	}

	conv := window.Active()
	if conv == nil {
		return fmt.Errorf("no conversation open; pass -with <userId> or trigger a handoff")
	}

	self, err := svc.CurrentUserID()
	if err != nil {
		return err
	}
	printConversation(conv, self)

	fmt.Println(`type a message, "/resend <id>" to retry, or "/quit"`)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/resend "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/resend "))
			if err := conv.Resend(ctx, id); err != nil {
				fmt.Println("!", err)
			}
		default:
			if err := conv.Send(ctx, line); err != nil {
				fmt.Println("!", conv.LastError())
			}
		}
		printConversation(conv, self)
	}
	return scanner.Err()
}

func printConversation(conv *chat.Conversation, self int64) {
	fmt.Printf("--- conversation with %s ---\n", conv.Other().DisplayName())
	for _, m := range conv.Messages() {
		who := conv.Other().DisplayName()
		if m.Sender.UserID == self {
			who = "you"
		}
		fmt.Printf("[%s] %-12s %-10s %s  (%s)\n", m.SentAt.Format("15:04"), who, m.Status, m.MessageText, shortID(m.MessageID))
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func runNotifications(ctx context.Context, svc *notification.Service, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	readID := fs.String("read", "", "mark one notification read")
	readAll := fs.Bool("read-all", false, "mark everything read")
	_ = fs.Parse(args)

	items, err := svc.Fetch(ctx)
	if err != nil {
		return err
	}

	if *readAll {
		return svc.MarkAllAsRead(ctx)
	}
	if *readID != "" {
		for _, n := range items {
			if n.NotificationID == *readID {
				return svc.MarkAsRead(ctx, n)
			}
		}
		return fmt.Errorf("notification %s not found", *readID)
	}

	grouped := notification.Process(items)
	fmt.Printf("%d unread\n", notification.ProcessForCount(items))
	for _, n := range grouped {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s [%s] %-12s %s  (%s)\n", marker, n.CreatedAt.Format("Jan 02 15:04"), n.Type, n.Message, shortID(n.NotificationID))
	}
	return nil
}

func runBookings(ctx context.Context, svc *booking.Service, args []string) error {
	fs := flag.NewFlagSet("bookings", flag.ExitOnError)
	provider := fs.Int64("provider", 0, "provider id")
	_ = fs.Parse(args)

	var bookings []domain.Booking
	var err error
	if *provider != 0 {
		bookings, err = svc.ProviderBookings(ctx, *provider)
	} else {
		bookings, err = svc.CustomerBookings(ctx)
	}
	if err != nil {
		return err
	}

	for _, b := range bookings {
		fmt.Printf("#%d %-20s %-10s %7.2f  %s\n", b.BookingID, b.ServiceName, b.Status, b.Price, b.ScheduledAt.Format("Jan 02 15:04"))
	}
	return nil
}

func runWatch(ctx context.Context, svc *notification.Service) error {
	poller := notification.NewPoller(svc, func(u notification.Update) {
		fmt.Printf("\r%d unread notification(s)", u.Unread)
		for _, n := range u.Notifications {
			if !n.Read {
				fmt.Printf("\n  %s", n.Message)
			}
		}
		fmt.Println()
	})
	poller.Run(ctx)
	return nil
}
