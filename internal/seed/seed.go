package seed

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hiveboard/hiveboard-backend/internal/ordering"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/types"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	log.Println("[Seed] 🌱 Creating initial data with real scenarios...")

	// ============================================
	// CREATE USERS (4 team members)
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// 1. AMARA - Workspace Owner
	amara := &repository.User{
		Email:    "amara.osei@hiveboard.dev",
		Password: string(password),
		Name:     "Amara Osei",
	}
	repos.UserRepo.Create(ctx, amara)

	// 2. DANIEL - Workspace Admin
	daniel := &repository.User{
		Email:    "daniel.reyes@hiveboard.dev",
		Password: string(password),
		Name:     "Daniel Reyes",
	}
	repos.UserRepo.Create(ctx, daniel)

	// 3. PRIYA - Plain Workspace Member
	priya := &repository.User{
		Email:    "priya.nair@hiveboard.dev",
		Password: string(password),
		Name:     "Priya Nair",
	}
	repos.UserRepo.Create(ctx, priya)

	// 4. TOMAS - Board-Only Contractor
	tomas := &repository.User{
		Email:    "tomas.lindqvist@hiveboard.dev",
		Password: string(password),
		Name:     "Tomas Lindqvist",
	}
	repos.UserRepo.Create(ctx, tomas)

	log.Printf("✅ Created 4 users: Amara (owner), Daniel (admin), Priya (member), Tomas (board-only)")

	// ============================================
	// SCENARIO 1: CREATE WORKSPACE
	// Amara creates "Hive Labs". Ownership lives on the record;
	// no member row is written for her.
	// ============================================
	workspace := &repository.Workspace{
		Name:         "Hive Labs",
		Description:  stringPtr("Main company workspace for all product boards"),
		OwnerID:      amara.ID,
		Visibility:   types.WorkspacePrivate,
		InvitePolicy: types.PolicyAdmins,
		BoardPolicy:  types.PolicyMembers,
	}
	repos.WorkspaceRepo.Create(ctx, workspace)

	// Daniel = ADMIN (full cascade over every board in the workspace)
	repos.WorkspaceRepo.AddMember(ctx, &repository.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      daniel.ID,
		Role:        types.RoleAdmin,
	})

	// Priya = MEMBER (sees workspace-visible boards, limited permissions)
	repos.WorkspaceRepo.AddMember(ctx, &repository.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      priya.ID,
		Role:        types.RoleMember,
	})

	// ❌ Tomas NOT added to workspace (will only access one private board)

	log.Printf("✅ Created workspace: Hive Labs")
	log.Printf("   └─ Owner: Amara | Members: Daniel (admin), Priya (member)")
	log.Printf("   └─ NOT in workspace: Tomas")

	// ============================================
	// SCENARIO 2: CREATE BOARDS
	// Board 1: Product Roadmap (workspace-visible, Priya creates)
	// Board 2: Security Review (private, Tomas added as board member)
	// ============================================
	roadmap := &repository.Board{
		Name:        "Product Roadmap",
		Description: stringPtr("Quarterly planning and delivery tracking"),
		WorkspaceID: workspace.ID,
		OwnerID:     priya.ID,
		Visibility:  types.BoardWorkspace,
	}
	repos.BoardRepo.Create(ctx, roadmap)

	security := &repository.Board{
		Name:        "Security Review",
		Description: stringPtr("Pentest findings and remediation work"),
		WorkspaceID: workspace.ID,
		OwnerID:     amara.ID,
		Visibility:  types.BoardPrivate,
	}
	repos.BoardRepo.Create(ctx, security)

	// ✅ Tomas added ONLY to the private board (contractor access)
	repos.BoardRepo.AddMember(ctx, &repository.BoardMember{
		BoardID: security.ID,
		UserID:  tomas.ID,
		Role:    types.RoleMember,
	})

	log.Printf("✅ Created 2 boards:")
	log.Printf("   ├─ Product Roadmap (workspace-visible, owned by Priya)")
	log.Printf("   └─ Security Review (private, owned by Amara)")
	log.Printf("      └─ Direct members: Tomas (member)")

	// ============================================
	// CREATE LISTS
	// Positions use the standard gap so midpoint insertion has room.
	// ============================================
	listNames := []string{"Backlog", "In Progress", "Done"}
	lists := make([]*repository.List, len(listNames))
	for i, name := range listNames {
		l := &repository.List{
			Name:     name,
			BoardID:  roadmap.ID,
			Position: float64(i+1) * ordering.Gap,
		}
		repos.ListRepo.Create(ctx, l)
		lists[i] = l
	}

	triage := &repository.List{
		Name:     "Triage",
		BoardID:  security.ID,
		Position: ordering.Gap,
	}
	repos.ListRepo.Create(ctx, triage)

	log.Printf("✅ Created 4 lists across both boards")

	// ============================================
	// CREATE CARDS
	// ============================================
	now := time.Now()
	due := now.AddDate(0, 0, 14)

	cards := []struct {
		Title       string
		List        *repository.List
		AssigneeIDs []string
		DueDate     *time.Time
	}{
		{"Draft Q3 roadmap outline", lists[0], []string{priya.ID}, &due},
		{"Collect customer feedback themes", lists[0], []string{}, nil},
		{"Ship workspace invitations", lists[1], []string{daniel.ID}, &due},
		{"Realtime board sync", lists[1], []string{daniel.ID, priya.ID}, nil},
		{"Launch announcement", lists[2], []string{amara.ID}, nil},
	}

	var firstCard *repository.Card
	for i, c := range cards {
		card := &repository.Card{
			Title:       c.Title,
			ListID:      c.List.ID,
			BoardID:     roadmap.ID,
			Position:    float64(i+1) * ordering.Gap,
			AssigneeIDs: c.AssigneeIDs,
			DueDate:     c.DueDate,
			CreatedBy:   priya.ID,
		}
		repos.CardRepo.Create(ctx, card)
		if firstCard == nil {
			firstCard = card
		}
	}

	repos.CardRepo.Create(ctx, &repository.Card{
		Title:       "Rotate leaked API keys",
		Description: stringPtr("Found during the external pentest. Rotate and audit usage."),
		ListID:      triage.ID,
		BoardID:     security.ID,
		Position:    ordering.Gap,
		AssigneeIDs: []string{tomas.ID},
		CreatedBy:   amara.ID,
	})

	log.Printf("✅ Created 6 cards")

	// ============================================
	// CREATE COMMENTS
	// ============================================
	repos.CommentRepo.Create(ctx, &repository.Comment{
		Body:     "Let's keep this scoped to the top three customer asks.",
		CardID:   firstCard.ID,
		AuthorID: daniel.ID,
	})
	repos.CommentRepo.Create(ctx, &repository.Comment{
		Body:     "Agreed, I'll trim the outline tomorrow.",
		CardID:   firstCard.ID,
		AuthorID: priya.ID,
	})

	// ============================================
	// CREATE SAMPLE NOTIFICATIONS
	// ============================================
	seedNotifications(ctx, repos, amara.ID, daniel.ID, priya.ID, tomas.ID, workspace.ID, roadmap.ID, security.ID)

	// ============================================
	// FINAL SUMMARY
	// ============================================
	log.Println("")
	log.Println("🎉 ============================================")
	log.Println("🎉 SEED COMPLETE - ACCESS SUMMARY")
	log.Println("🎉 ============================================")
	log.Println("")
	log.Println("👤 AMARA OSEI (amara.osei@hiveboard.dev)")
	log.Println("   Role: WORKSPACE OWNER (no member row, outranks every role)")
	log.Println("   ✅ Workspace: Hive Labs | ✅ Both boards")
	log.Println("")
	log.Println("👤 DANIEL REYES (daniel.reyes@hiveboard.dev)")
	log.Println("   Role: WORKSPACE ADMIN (cascades onto every board)")
	log.Println("   ✅ Workspace: Hive Labs | ✅ Both boards")
	log.Println("")
	log.Println("👤 PRIYA NAIR (priya.nair@hiveboard.dev)")
	log.Println("   Role: WORKSPACE MEMBER")
	log.Println("   ✅ Product Roadmap (owner) | ❌ Security Review (private)")
	log.Println("")
	log.Println("👤 TOMAS LINDQVIST (tomas.lindqvist@hiveboard.dev)")
	log.Println("   Role: BOARD-ONLY CONTRACTOR")
	log.Println("   ❌ Workspace membership | ✅ Security Review (member)")
	log.Println("")
	log.Println("🎯 Test Credentials:")
	log.Println("   Email: any of the above")
	log.Println("   Password: password123")
	log.Println("")
}

// seedNotifications creates sample notifications for all users
func seedNotifications(ctx context.Context, repos *repository.Repositories, amaraID, danielID, priyaID, tomasID, workspaceID, roadmapID, securityID string) {
	now := time.Now()

	notifications := []repository.Notification{
		{
			UserID:    amaraID,
			Type:      "CARD_ASSIGNED",
			Title:     "Card Assigned",
			Message:   "You have been assigned to card: Launch announcement",
			Read:      false,
			Data:      map[string]interface{}{"boardId": roadmapID},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			UserID:    danielID,
			Type:      "MEMBER_ADDED",
			Title:     "Added to Workspace",
			Message:   "Amara Osei added you to workspace: Hive Labs",
			Read:      true,
			Data:      map[string]interface{}{"workspaceId": workspaceID},
			CreatedAt: now.Add(-5 * 24 * time.Hour),
		},
		{
			UserID:    danielID,
			Type:      "CARD_ASSIGNED",
			Title:     "Card Assigned",
			Message:   "You have been assigned to card: Ship workspace invitations",
			Read:      false,
			Data:      map[string]interface{}{"boardId": roadmapID},
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			UserID:    priyaID,
			Type:      "CARD_COMMENTED",
			Title:     "New Comment",
			Message:   "Daniel Reyes commented on card: Draft Q3 roadmap outline",
			Read:      false,
			Data:      map[string]interface{}{"boardId": roadmapID},
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			UserID:    tomasID,
			Type:      "MEMBER_ADDED",
			Title:     "Added to Board",
			Message:   "Amara Osei added you to board: Security Review",
			Read:      true,
			Data:      map[string]interface{}{"boardId": securityID},
			CreatedAt: now.Add(-2 * 24 * time.Hour),
		},
		{
			UserID:    tomasID,
			Type:      "CARD_ASSIGNED",
			Title:     "Card Assigned",
			Message:   "You have been assigned to card: Rotate leaked API keys",
			Read:      false,
			Data:      map[string]interface{}{"boardId": securityID},
			CreatedAt: now.Add(-1 * 24 * time.Hour),
		},
	}

	for _, n := range notifications {
		notif := n
		repos.NotificationRepo.Create(ctx, &notif)
	}

	log.Printf("✅ Created %d notifications for all users", len(notifications))
}

// Helper function to create string pointers
func stringPtr(s string) *string {
	return &s
}
