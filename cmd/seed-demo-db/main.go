package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway/demo"
	"github.com/gigstage/console/chat-bridge/internal/repository"
)

var admin = domain.Identity{
	ID:    "admin-1",
	Name:  "Admin",
	Email: "admin@gigstage.io",
}

func main() {
	dbPath := "demo_chat.db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	fmt.Printf("Using database at: %s\n", dbPath)

	db, err := demo.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()
	if err := db.WithContext(ctx).Exec("DELETE FROM messages").Error; err != nil {
		log.Fatalf("Failed to delete messages: %v", err)
	}
	if err := db.WithContext(ctx).Exec("DELETE FROM conversations").Error; err != nil {
		log.Fatalf("Failed to delete conversations: %v", err)
	}
	fmt.Println("Cleared existing conversations and messages")

	if err := seedDemoData(ctx, db); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	fmt.Println("Demo data ready!")
	fmt.Printf("Database location: %s\n", dbPath)
	fmt.Printf("Run with: chat-bridge -offline -db %s -user-email %s\n", dbPath, admin.Email)
}

type seedUser struct {
	name  string
	email string
}

var artists = []seedUser{
	{"Mia Torres", "mia.torres@gigstage.io"},
	{"Jonas Keller", "jonas.keller@gigstage.io"},
	{"Priya Nair", "priya.nair@gigstage.io"},
	{"Sam Okafor", "sam.okafor@gigstage.io"},
	{"Lena Fischer", "lena.fischer@gigstage.io"},
	{"Diego Ramos", "diego.ramos@gigstage.io"},
	{"Hana Sato", "hana.sato@gigstage.io"},
	{"Tom Bailey", "tom.bailey@gigstage.io"},
}

var groupNames = []string{
	"Summer Festival Lineup",
	"Jazz Night Bookings",
	"Venue Partners",
}

var sampleTexts = []string{
	"Hi! Is the Saturday slot still open?",
	"The rider is attached, let me know if anything is missing.",
	"Can we move soundcheck to 5pm?",
	"Payment for the last gig just cleared, thanks!",
	"The venue confirmed the backline.",
	"Do you need a second monitor on stage?",
	"Our set runs about 75 minutes.",
	"Sent over the updated contract.",
	"The promoter wants a longer encore slot.",
	"Parking passes are sorted for the whole band.",
	"Could you share the stage plot?",
	"Doors open at 7, you're on at 9.",
	"The deposit invoice is overdue, just a heads up.",
	"Great show last night, the crowd loved it!",
	"We'd like to book you for the spring series.",
	"Travel costs are covered up to 200.",
	"Merch table is next to the bar this time.",
	"Final lineup goes out in the newsletter tomorrow.",
}

func seedDemoData(ctx context.Context, db *gorm.DB) error {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := userRepo.Upsert(ctx, &domain.User{ID: admin.ID, Name: admin.Name, Email: admin.Email}); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	identities := make([]domain.Identity, len(artists))
	for i, a := range artists {
		identities[i] = domain.Identity{ID: uuid.NewString(), Name: a.name, Email: a.email}
		if err := userRepo.Upsert(ctx, &domain.User{ID: identities[i].ID, Name: a.name, Email: a.email}); err != nil {
			return fmt.Errorf("failed to create user %s: %w", a.email, err)
		}
	}

	conversations := make([]*domain.Conversation, 0, len(artists[:6])+len(groupNames))

	// Direct conversations with the first six artists
	for _, a := range artists[:6] {
		conv := domain.NewDirectConversation(
			uuid.NewString(),
			[]string{admin.Email, a.email},
			[]string{admin.Name, a.name},
		)
		conversations = append(conversations, conv)
	}

	// Group conversations with a few artists each
	for i, name := range groupNames {
		members := artists[i : i+4]
		participants := []string{admin.Email}
		names := []string{admin.Name}
		for _, m := range members {
			participants = append(participants, m.email)
			names = append(names, m.name)
		}
		conv := domain.NewGroupConversation(uuid.NewString(), name, participants, names)
		conversations = append(conversations, conv)
	}

	now := time.Now()

	for _, conv := range conversations {
		numMessages := 8 + rnd.Intn(8)
		messageTime := now.Add(-time.Duration(1+rnd.Intn(5)) * 24 * time.Hour)

		conv.CreatedAt = messageTime
		conv.UpdatedAt = messageTime
		if err := convRepo.Upsert(ctx, conv); err != nil {
			return fmt.Errorf("failed to create conversation %s: %w", conv.ID, err)
		}

		unread := 0
		for j := 0; j < numMessages; j++ {
			if j > 0 {
				messageTime = messageTime.Add(time.Duration(10+rnd.Intn(50)) * time.Minute)
				if messageTime.After(now) {
					messageTime = now.Add(-time.Duration(rnd.Intn(30)) * time.Minute)
				}
			}

			sender := admin
			if rnd.Float32() < 0.6 {
				sender = senderFor(conv, identities, rnd)
			}

			msg := domain.NewTextMessage(
				uuid.NewString(),
				conv.ID,
				sender,
				sampleTexts[rnd.Intn(len(sampleTexts))],
				messageTime,
			)
			msg.Status = domain.StatusSent

			// Only the tail of the thread stays unread, and only inbound.
			msg.IsRead = sender.Email == admin.Email || j < numMessages-3 || rnd.Float32() < 0.5

			if err := msgRepo.Create(ctx, msg); err != nil {
				return fmt.Errorf("failed to create message: %w", err)
			}
			if !msg.IsRead {
				unread++
				if err := convRepo.IncrementUnreadCount(ctx, conv.ID); err != nil {
					return fmt.Errorf("failed to bump unread count: %w", err)
				}
			}
		}

		if err := convRepo.Touch(ctx, conv.ID, messageTime); err != nil {
			return fmt.Errorf("failed to touch conversation %s: %w", conv.ID, err)
		}

		label := conv.GroupName
		if !conv.IsGroup {
			label = strings.Join(conv.ParticipantNames[1:], ", ")
		}
		fmt.Printf("Created conversation: %s with %d messages (%d unread)\n", label, numMessages, unread)
	}

	return nil
}

func senderFor(conv *domain.Conversation, identities []domain.Identity, rnd *rand.Rand) domain.Identity {
	var candidates []domain.Identity
	for _, id := range identities {
		if conv.HasParticipant(id.Email) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return admin
	}
	return candidates[rnd.Intn(len(candidates))]
}
