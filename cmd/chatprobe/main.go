package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"docuchat-be/pkg/chatclient"
	"docuchat-be/pkg/identity"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// chatprobe runs a full conversation against a live backend: create a
// session, ask, poll for the reply, list history, archive. Useful for
// smoke-testing a deployment end to end.
func main() {
	_ = godotenv.Load()

	baseURL := flag.String("base-url", "http://localhost:3000/api", "API base URL")
	question := flag.String("question", "What do my documents say about onboarding?", "question to ask")
	mode := flag.String("mode", chatclient.ModeBalanced, "response mode: strict|balanced|creative")
	keep := flag.Bool("keep", false, "keep the probe session instead of deleting it")
	flag.Parse()

	ok := color.New(color.FgGreen)
	fail := color.New(color.FgRed)
	info := color.New(color.FgCyan)

	creds := buildCredentials()
	client := chatclient.New(*baseURL, creds)
	ctx := context.Background()

	info.Println("== chatprobe ==")

	// 1. Fresh session
	session, err := client.NewSession(ctx)
	if err != nil {
		fail.Printf("create session failed: %v\n", err)
		os.Exit(1)
	}
	ok.Printf("session created: %s\n", session.Id)

	// 2. Ask
	info.Printf("asking (%s): %s\n", *mode, *question)
	exchange, err := client.SendMessage(ctx, &session.Id, chatclient.SendMessageRequest{
		Question: *question,
		Mode:     *mode,
	})
	if err != nil {
		fail.Printf("send message failed: %v\n", err)
		os.Exit(1)
	}
	ok.Printf("accepted, reply %s is %s\n", exchange.Reply.Id, exchange.Reply.Status)

	// 3. Poll until the reply settles
	reply := exchange.Reply
	deadline := time.Now().Add(2 * time.Minute)
	for reply.Status == chatclient.StatusPending || reply.Status == chatclient.StatusStreaming {
		if time.Now().After(deadline) {
			fail.Println("gave up waiting for the reply")
			os.Exit(1)
		}
		time.Sleep(2 * time.Second)

		page, err := client.SessionMessages(ctx, session.Id, 0, "")
		if err != nil {
			fail.Printf("fetch messages failed: %v\n", err)
			os.Exit(1)
		}
		for _, msg := range page.Messages {
			if msg.Id == reply.Id {
				reply = msg
			}
		}
		info.Printf("reply status: %s\n", reply.Status)
	}

	switch reply.Status {
	case chatclient.StatusCompleted:
		ok.Println("reply completed:")
		fmt.Println(reply.Content)
		if len(reply.Sources) > 0 {
			info.Printf("%d sources:\n", len(reply.Sources))
			for i, src := range reply.Sources {
				fmt.Printf("  [%d] %s (score %.3f)\n", i+1, src.DocumentName, src.RelevanceScore)
			}
		}
	case chatclient.StatusFailed:
		fail.Printf("reply failed: %s\n", reply.ErrorMessage)
	}

	// 4. Session list should now carry the derived title
	sessions, err := client.ListSessions(ctx, false, 5)
	if err != nil {
		fail.Printf("list sessions failed: %v\n", err)
		os.Exit(1)
	}
	for _, s := range sessions {
		marker := " "
		if s.Id == session.Id {
			marker = "*"
		}
		fmt.Printf(" %s %s  %q  (%d messages)\n", marker, s.Id, s.Title, s.MessageCount)
	}

	// 5. Clean up
	if *keep {
		info.Println("keeping probe session")
		return
	}
	if err := client.DeleteSession(ctx, session.Id); err != nil {
		fail.Printf("delete session failed: %v\n", err)
		os.Exit(1)
	}
	ok.Println("probe session deleted")
}

// buildCredentials prefers a static token (CHAT_PROBE_TOKEN), falling back
// to the client-credentials flow against the identity provider.
func buildCredentials() identity.CredentialProvider {
	if token := os.Getenv("CHAT_PROBE_TOKEN"); token != "" {
		return &identity.StaticTokenProvider{AccessToken: token}
	}
	return identity.NewClientCredentialsProvider(
		os.Getenv("IDP_TOKEN_URL"),
		os.Getenv("IDP_CLIENT_ID"),
		os.Getenv("IDP_CLIENT_SECRET"),
		nil,
	)
}
