// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"spacebot/internal/auth"
	"spacebot/internal/stackexchange"
	"spacebot/pkg/registrations"
)

// FallbackReply is the only thing an end user sees when a search fails,
// whatever the reason.
const FallbackReply = "Unfortunately I didn't find an answer for you :face_with_rolling_eyes:"

// Sessions produces authenticated sessions for tenants.
type Sessions interface {
	AuthenticateByID(ctx context.Context, clientID string) (auth.Session, error)
	AuthenticateRegistration(ctx context.Context, reg registrations.ClientRegistration) (auth.Session, error)
}

// Sender posts chat messages on behalf of a session.
type Sender interface {
	SendToChannel(ctx context.Context, session auth.Session, channelID, text string) error
	SendToUser(ctx context.Context, session auth.Session, userID, text string) error
}

// Knowledge answers free-text questions against a site catalog.
type Knowledge interface {
	SearchAnswer(ctx context.Context, query, siteSlug string) (string, error)
}

// CommandInfo is one entry of the ListCommandsPayload response.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Dispatcher turns webhook payloads into their side effects.
type Dispatcher struct {
	store       registrations.Store
	sessions    Sessions
	gateway     Sender
	knowledge   Knowledge
	catalog     *stackexchange.Catalog
	defaultSite string
	log         *zap.SugaredLogger
}

func NewDispatcher(store registrations.Store, sessions Sessions, gateway Sender, knowledge Knowledge, catalog *stackexchange.Catalog, defaultSite string, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		store:       store,
		sessions:    sessions,
		gateway:     gateway,
		knowledge:   knowledge,
		catalog:     catalog,
		defaultSite: defaultSite,
		log:         log,
	}
}

// HandleInit stores the installation credentials and greets the installing
// user. The registration survives even when the greeting fails.
func (d *Dispatcher) HandleInit(ctx context.Context, p InitPayload) error {
	reg := registrations.ClientRegistration{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		ServerURL:    p.ServerURL,
		InstalledBy:  p.UserID,
	}
	if err := d.store.Upsert(ctx, reg); err != nil {
		return fmt.Errorf("store registration: %w", err)
	}
	d.log.Infow("app installed", "clientId", p.ClientID, "serverUrl", p.ServerURL)

	if p.UserID == "" {
		return nil
	}
	session, err := d.sessions.AuthenticateRegistration(ctx, reg)
	if err != nil {
		return fmt.Errorf("welcome auth: %w", err)
	}
	if err := d.gateway.SendToUser(ctx, session, p.UserID, d.welcomeText()); err != nil {
		return fmt.Errorf("welcome send: %w", err)
	}
	return nil
}

// HandleMessage authenticates the tenant, parses the message into a command
// and answers into the originating channel.
func (d *Dispatcher) HandleMessage(ctx context.Context, p MessagePayload) error {
	session, err := d.sessions.AuthenticateByID(ctx, p.ClientID)
	if err != nil {
		return err
	}

	cmd := ParseCommand(p.Text, d.defaultSite, d.catalog.HasSlug)
	if cmd.Name == HelpCommand {
		return d.gateway.SendToChannel(ctx, session, p.ChannelID, d.helpText())
	}

	reply, err := d.knowledge.SearchAnswer(ctx, cmd.Arg, cmd.Name)
	if err != nil {
		// Whatever went wrong upstream, the user gets one fixed reply.
		d.log.Errorw("search failed", "clientId", p.ClientID, "site", cmd.Name, "err", err)
		reply = FallbackReply
	}
	return d.gateway.SendToChannel(ctx, session, p.ChannelID, reply)
}

// HandleListCommands returns the closed command set for the platform's
// command picker.
func (d *Dispatcher) HandleListCommands(ctx context.Context) []CommandInfo {
	out := []CommandInfo{{Name: HelpCommand, Description: "Show usage and available sites"}}
	for _, site := range d.catalog.Sites() {
		out = append(out, CommandInfo{Name: site.Slug, Description: "Search on " + site.Name})
	}
	return out
}

func (d *Dispatcher) helpText() string {
	var b strings.Builder
	b.WriteString("Ask me anything: `<site> <question>` searches a site, a bare question searches ")
	b.WriteString(d.defaultSite)
	b.WriteString(".\n\nAvailable sites:\n")
	for _, site := range d.catalog.Sites() {
		fmt.Fprintf(&b, "- `%s` — %s\n", site.Slug, site.Name)
	}
	return b.String()
}

func (d *Dispatcher) welcomeText() string {
	return "Thanks for installing the Q&A bot! Mention me in a channel with a question, " +
		"or type `help` to see the available sites."
}
