package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hiveboard/hiveboard-backend/internal/ordering"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/service"
)

// Positions are compacted once the tightest gap in a container drops below
// this threshold, well before midpoint insertion stops producing distinct
// keys.
const compactionThreshold = 1.0

// Scheduler handles scheduled maintenance tasks
type Scheduler struct {
	cron     *cron.Cron
	services *service.Services
	listRepo repository.ListRepository
	cardRepo repository.CardRepository
	invRepo  repository.InvitationRepository
}

// NewScheduler creates a new scheduler with direct repository access for
// maintenance queries the service layer does not expose
func NewScheduler(services *service.Services, listRepo repository.ListRepository, cardRepo repository.CardRepository, invRepo repository.InvitationRepository) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		services: services,
		listRepo: listRepo,
		cardRepo: cardRepo,
		invRepo:  invRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Clean up old notifications - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	// Expire stale invitations - Run every hour
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running invitation expiry...")
		s.expireInvitations()
	})

	// Compact crowded positions - Run every day at 3 AM
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running position compaction...")
		s.compactPositions()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// cleanupOldNotifications removes read notifications older than 30 days
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	deleted, err := s.services.Notification.CleanupOld(ctx, 30*24*time.Hour)
	if err != nil {
		log.Printf("[Cron] Error cleaning up notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d old notifications", deleted)
	}
}

// expireInvitations marks pending invitations past their deadline as expired
func (s *Scheduler) expireInvitations() {
	ctx := context.Background()

	expired, err := s.invRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		log.Printf("[Cron] Error expiring invitations: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("[Cron] Expired %d stale invitations", expired)
	}
}

// compactPositions renumbers lists and cards in containers whose position
// keys have grown too dense from repeated midpoint insertion
func (s *Scheduler) compactPositions() {
	ctx := context.Background()

	boardIDs, err := s.listRepo.FindDenseBoards(ctx, compactionThreshold)
	if err != nil {
		log.Printf("[Cron] Error finding dense boards: %v", err)
	} else {
		for _, boardID := range boardIDs {
			if err := s.listRepo.RenumberPositions(ctx, boardID, ordering.Gap); err != nil {
				log.Printf("[Cron] Error renumbering lists on board %s: %v", boardID, err)
				continue
			}
			log.Printf("[Cron] Compacted list positions on board %s", boardID)
		}
	}

	listIDs, err := s.cardRepo.FindDenseLists(ctx, compactionThreshold)
	if err != nil {
		log.Printf("[Cron] Error finding dense lists: %v", err)
		return
	}
	for _, listID := range listIDs {
		if err := s.cardRepo.RenumberPositions(ctx, listID, ordering.Gap); err != nil {
			log.Printf("[Cron] Error renumbering cards in list %s: %v", listID, err)
			continue
		}
		log.Printf("[Cron] Compacted card positions in list %s", listID)
	}
}

// ManualTrigger allows manual triggering of maintenance tasks (for testing)
func (s *Scheduler) ManualTrigger(checkType string) {
	switch checkType {
	case "cleanup":
		s.cleanupOldNotifications()
	case "invitations":
		s.expireInvitations()
	case "compact":
		s.compactPositions()
	case "all":
		s.cleanupOldNotifications()
		s.expireInvitations()
		s.compactPositions()
	}
}
