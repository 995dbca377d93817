package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory repositories. Used by the test suites and as a storage fallback
// when no database is configured.

type memUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*User
	tokens map[string]*RefreshToken
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{
		users:  make(map[string]*User),
		tokens: make(map[string]*RefreshToken),
	}
}

func (r *memUserRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.LastActiveAt = &now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepository) Search(ctx context.Context, query string, limit int) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(query)
	var users []*User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memUserRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	existing.Name = user.Name
	existing.Avatar = user.Avatar
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memUserRepository) UpdateLastActive(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		now := time.Now()
		u.LastActiveAt = &now
	}
	return nil
}

func (r *memUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *memUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tokens[token]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memUserRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

// memStore holds the shared board-domain state so the cascading deletes can
// cross entity types the way the SQL transactions do.
type memStore struct {
	mu          sync.RWMutex
	workspaces  map[string]*Workspace
	wsMembers   map[string]*WorkspaceMember
	boards      map[string]*Board
	boardMems   map[string]*BoardMember
	lists       map[string]*List
	cards       map[string]*Card
	comments    map[string]*Comment
	attachments map[string]*Attachment
	invitations map[string]*Invitation
}

func newMemStore() *memStore {
	return &memStore{
		workspaces:  make(map[string]*Workspace),
		wsMembers:   make(map[string]*WorkspaceMember),
		boards:      make(map[string]*Board),
		boardMems:   make(map[string]*BoardMember),
		lists:       make(map[string]*List),
		cards:       make(map[string]*Card),
		comments:    make(map[string]*Comment),
		attachments: make(map[string]*Attachment),
		invitations: make(map[string]*Invitation),
	}
}

// ------------------------------------------------------------------
// Workspace
// ------------------------------------------------------------------

type memWorkspaceRepository struct{ s *memStore }

func (r *memWorkspaceRepository) Create(ctx context.Context, ws *Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	ws.ID = uuid.NewString()
	ws.CreatedAt = now
	ws.UpdatedAt = now
	cp := *ws
	r.s.workspaces[ws.ID] = &cp
	return nil
}

func (r *memWorkspaceRepository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if ws, ok := r.s.workspaces[id]; ok && ws.DeletedAt == nil {
		cp := *ws
		return &cp, nil
	}
	return nil, nil
}

func (r *memWorkspaceRepository) FindByUserID(ctx context.Context, userID string) ([]*Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]bool)
	var result []*Workspace
	add := func(ws *Workspace) {
		if ws != nil && ws.DeletedAt == nil && !seen[ws.ID] {
			seen[ws.ID] = true
			cp := *ws
			result = append(result, &cp)
		}
	}
	for _, ws := range r.s.workspaces {
		if ws.OwnerID == userID {
			add(ws)
		}
	}
	for _, m := range r.s.wsMembers {
		if m.UserID == userID {
			add(r.s.workspaces[m.WorkspaceID])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memWorkspaceRepository) Update(ctx context.Context, ws *Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.workspaces[ws.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.Name = ws.Name
	existing.Description = ws.Description
	existing.Visibility = ws.Visibility
	existing.InvitePolicy = ws.InvitePolicy
	existing.BoardPolicy = ws.BoardPolicy
	existing.UpdatedAt = time.Now()
	ws.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memWorkspaceRepository) DeleteCascade(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	ws, ok := r.s.workspaces[id]
	if !ok || ws.DeletedAt != nil {
		return nil
	}
	ws.DeletedAt = &now
	var boardIDs []string
	for _, b := range r.s.boards {
		if b.WorkspaceID == id && b.DeletedAt == nil {
			boardIDs = append(boardIDs, b.ID)
		}
	}
	r.s.deleteBoardsLocked(boardIDs, now)
	return nil
}

func (r *memWorkspaceRepository) AddMember(ctx context.Context, m *WorkspaceMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.NewString()
	m.JoinedAt = time.Now()
	cp := *m
	cp.User = nil
	r.s.wsMembers[m.ID] = &cp
	return nil
}

func (r *memWorkspaceRepository) FindMembers(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var members []*WorkspaceMember
	for _, m := range r.s.wsMembers {
		if m.WorkspaceID == workspaceID {
			cp := *m
			members = append(members, &cp)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (r *memWorkspaceRepository) FindMember(ctx context.Context, workspaceID, userID string) (*WorkspaceMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.wsMembers {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWorkspaceRepository) UpdateMemberRole(ctx context.Context, workspaceID, userID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.wsMembers {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			m.Role = role
		}
	}
	return nil
}

func (r *memWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.wsMembers {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			delete(r.s.wsMembers, id)
		}
	}
	return nil
}

// ------------------------------------------------------------------
// Board
// ------------------------------------------------------------------

type memBoardRepository struct{ s *memStore }

func (r *memBoardRepository) Create(ctx context.Context, b *Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	r.s.boards[b.ID] = &cp
	return nil
}

func (r *memBoardRepository) FindByID(ctx context.Context, id string) (*Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if b, ok := r.s.boards[id]; ok && b.DeletedAt == nil {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memBoardRepository) FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var boards []*Board
	for _, b := range r.s.boards {
		if b.WorkspaceID == workspaceID && b.DeletedAt == nil {
			cp := *b
			boards = append(boards, &cp)
		}
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].Name < boards[j].Name })
	return boards, nil
}

func (r *memBoardRepository) Update(ctx context.Context, b *Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.boards[b.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.Name = b.Name
	existing.Description = b.Description
	existing.Visibility = b.Visibility
	existing.UpdatedAt = time.Now()
	b.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memBoardRepository) DeleteCascade(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteBoardsLocked([]string{id}, time.Now())
	return nil
}

func (r *memBoardRepository) AddMember(ctx context.Context, m *BoardMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.NewString()
	m.JoinedAt = time.Now()
	cp := *m
	cp.User = nil
	r.s.boardMems[m.ID] = &cp
	return nil
}

func (r *memBoardRepository) FindMembers(ctx context.Context, boardID string) ([]*BoardMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var members []*BoardMember
	for _, m := range r.s.boardMems {
		if m.BoardID == boardID {
			cp := *m
			members = append(members, &cp)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (r *memBoardRepository) FindMember(ctx context.Context, boardID, userID string) (*BoardMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.boardMems {
		if m.BoardID == boardID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBoardRepository) UpdateMemberRole(ctx context.Context, boardID, userID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.boardMems {
		if m.BoardID == boardID && m.UserID == userID {
			m.Role = role
		}
	}
	return nil
}

func (r *memBoardRepository) RemoveMember(ctx context.Context, boardID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.boardMems {
		if m.BoardID == boardID && m.UserID == userID {
			delete(r.s.boardMems, id)
		}
	}
	return nil
}

// deleteBoardsLocked soft-deletes boards and everything below them. Caller
// holds the write lock, so the whole cascade is one atomic step, matching
// the SQL transaction boundary.
func (s *memStore) deleteBoardsLocked(boardIDs []string, now time.Time) {
	boards := make(map[string]bool, len(boardIDs))
	for _, id := range boardIDs {
		if b, ok := s.boards[id]; ok && b.DeletedAt == nil {
			b.DeletedAt = &now
			boards[id] = true
		}
	}
	lists := make(map[string]bool)
	for _, l := range s.lists {
		if boards[l.BoardID] && l.DeletedAt == nil {
			l.DeletedAt = &now
			lists[l.ID] = true
		}
	}
	s.deleteCardsOfListsLocked(lists, now)
}

func (s *memStore) deleteCardsOfListsLocked(listIDs map[string]bool, now time.Time) {
	cards := make(map[string]bool)
	for _, c := range s.cards {
		if listIDs[c.ListID] && c.DeletedAt == nil {
			c.DeletedAt = &now
			cards[c.ID] = true
		}
	}
	s.deleteCardChildrenLocked(cards, now)
}

func (s *memStore) deleteCardChildrenLocked(cardIDs map[string]bool, now time.Time) {
	for _, cm := range s.comments {
		if cardIDs[cm.CardID] && cm.DeletedAt == nil {
			cm.DeletedAt = &now
		}
	}
	for _, a := range s.attachments {
		if cardIDs[a.CardID] && a.DeletedAt == nil {
			a.DeletedAt = &now
		}
	}
}

// ------------------------------------------------------------------
// List
// ------------------------------------------------------------------

type memListRepository struct{ s *memStore }

func (r *memListRepository) Create(ctx context.Context, l *List) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	r.s.lists[l.ID] = &cp
	return nil
}

func (r *memListRepository) FindByID(ctx context.Context, id string) (*List, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.lists[id]; ok && l.DeletedAt == nil {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *memListRepository) FindByBoardID(ctx context.Context, boardID string) ([]*List, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var lists []*List
	for _, l := range r.s.lists {
		if l.BoardID == boardID && l.DeletedAt == nil {
			cp := *l
			lists = append(lists, &cp)
		}
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].Position < lists[j].Position })
	return lists, nil
}

func (r *memListRepository) Update(ctx context.Context, l *List) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.lists[l.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.Name = l.Name
	existing.UpdatedAt = time.Now()
	l.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memListRepository) DeleteCascade(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	l, ok := r.s.lists[id]
	if !ok || l.DeletedAt != nil {
		return nil
	}
	l.DeletedAt = &now
	r.s.deleteCardsOfListsLocked(map[string]bool{id: true}, now)
	return nil
}

func (r *memListRepository) MaxPosition(ctx context.Context, boardID, excludeID string) (float64, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var max float64
	found := false
	for _, l := range r.s.lists {
		if l.BoardID == boardID && l.ID != excludeID && l.DeletedAt == nil {
			if !found || l.Position > max {
				max = l.Position
				found = true
			}
		}
	}
	return max, found, nil
}

func (r *memListRepository) Move(ctx context.Context, id, boardID string, position float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.lists[id]; ok && l.DeletedAt == nil {
		now := time.Now()
		l.BoardID = boardID
		l.Position = position
		l.UpdatedAt = now
		// Cards carry a denormalized board reference that has to follow the list.
		for _, c := range r.s.cards {
			if c.ListID == id && c.DeletedAt == nil {
				c.BoardID = boardID
				c.UpdatedAt = now
			}
		}
	}
	return nil
}

func (r *memListRepository) RenumberPositions(ctx context.Context, boardID string, gap float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lists []*List
	for _, l := range r.s.lists {
		if l.BoardID == boardID && l.DeletedAt == nil {
			lists = append(lists, l)
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		if lists[i].Position != lists[j].Position {
			return lists[i].Position < lists[j].Position
		}
		return lists[i].ID < lists[j].ID
	})
	for i, l := range lists {
		l.Position = float64(i+1) * gap
	}
	return nil
}

func (r *memListRepository) FindDenseBoards(ctx context.Context, minGap float64) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byBoard := make(map[string][]float64)
	for _, l := range r.s.lists {
		if l.DeletedAt == nil {
			byBoard[l.BoardID] = append(byBoard[l.BoardID], l.Position)
		}
	}
	return denseContainers(byBoard, minGap), nil
}

// ------------------------------------------------------------------
// Card
// ------------------------------------------------------------------

type memCardRepository struct{ s *memStore }

func (r *memCardRepository) Create(ctx context.Context, c *Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	cp.AssigneeIDs = append([]string(nil), c.AssigneeIDs...)
	r.s.cards[c.ID] = &cp
	return nil
}

func (r *memCardRepository) FindByID(ctx context.Context, id string) (*Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.cards[id]; ok && c.DeletedAt == nil {
		cp := *c
		cp.AssigneeIDs = append([]string(nil), c.AssigneeIDs...)
		return &cp, nil
	}
	return nil, nil
}

func (r *memCardRepository) FindByListID(ctx context.Context, listID string) ([]*Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var cards []*Card
	for _, c := range r.s.cards {
		if c.ListID == listID && c.DeletedAt == nil {
			cp := *c
			cp.AssigneeIDs = append([]string(nil), c.AssigneeIDs...)
			cards = append(cards, &cp)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	return cards, nil
}

func (r *memCardRepository) FindByBoardID(ctx context.Context, boardID string) ([]*Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var cards []*Card
	for _, c := range r.s.cards {
		if c.BoardID == boardID && c.DeletedAt == nil {
			cp := *c
			cp.AssigneeIDs = append([]string(nil), c.AssigneeIDs...)
			cards = append(cards, &cp)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].ListID != cards[j].ListID {
			return cards[i].ListID < cards[j].ListID
		}
		return cards[i].Position < cards[j].Position
	})
	return cards, nil
}

func (r *memCardRepository) Update(ctx context.Context, c *Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.cards[c.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.Title = c.Title
	existing.Description = c.Description
	existing.DueDate = c.DueDate
	existing.UpdatedAt = time.Now()
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memCardRepository) DeleteCascade(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c, ok := r.s.cards[id]
	if !ok || c.DeletedAt != nil {
		return nil
	}
	c.DeletedAt = &now
	r.s.deleteCardChildrenLocked(map[string]bool{id: true}, now)
	return nil
}

func (r *memCardRepository) AddAssignee(ctx context.Context, cardID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok || c.DeletedAt != nil {
		return nil
	}
	for _, id := range c.AssigneeIDs {
		if id == userID {
			return nil
		}
	}
	c.AssigneeIDs = append(c.AssigneeIDs, userID)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memCardRepository) RemoveAssignee(ctx context.Context, cardID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok || c.DeletedAt != nil {
		return nil
	}
	kept := c.AssigneeIDs[:0]
	for _, id := range c.AssigneeIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	c.AssigneeIDs = kept
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memCardRepository) MaxPosition(ctx context.Context, listID, excludeID string) (float64, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var max float64
	found := false
	for _, c := range r.s.cards {
		if c.ListID == listID && c.ID != excludeID && c.DeletedAt == nil {
			if !found || c.Position > max {
				max = c.Position
				found = true
			}
		}
	}
	return max, found, nil
}

func (r *memCardRepository) Move(ctx context.Context, id, listID string, position float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.cards[id]; ok && c.DeletedAt == nil {
		if l, lok := r.s.lists[listID]; lok {
			c.BoardID = l.BoardID
		}
		c.ListID = listID
		c.Position = position
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memCardRepository) RenumberPositions(ctx context.Context, listID string, gap float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cards []*Card
	for _, c := range r.s.cards {
		if c.ListID == listID && c.DeletedAt == nil {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Position != cards[j].Position {
			return cards[i].Position < cards[j].Position
		}
		return cards[i].ID < cards[j].ID
	})
	for i, c := range cards {
		c.Position = float64(i+1) * gap
	}
	return nil
}

func (r *memCardRepository) FindDenseLists(ctx context.Context, minGap float64) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byList := make(map[string][]float64)
	for _, c := range r.s.cards {
		if c.DeletedAt == nil {
			byList[c.ListID] = append(byList[c.ListID], c.Position)
		}
	}
	return denseContainers(byList, minGap), nil
}

func denseContainers(positions map[string][]float64, minGap float64) []string {
	var ids []string
	for id, ps := range positions {
		sort.Float64s(ps)
		for i := 1; i < len(ps); i++ {
			if ps[i]-ps[i-1] < minGap {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// ------------------------------------------------------------------
// Comment
// ------------------------------------------------------------------

type memCommentRepository struct{ s *memStore }

func (r *memCommentRepository) Create(ctx context.Context, c *Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	cp.Author = nil
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.comments[id]; ok && c.DeletedAt == nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *memCommentRepository) FindByCardID(ctx context.Context, cardID string) ([]*Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var comments []*Comment
	for _, c := range r.s.comments {
		if c.CardID == cardID && c.DeletedAt == nil {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (r *memCommentRepository) Update(ctx context.Context, c *Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.comments[c.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.Body = c.Body
	existing.UpdatedAt = time.Now()
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memCommentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.comments[id]; ok && c.DeletedAt == nil {
		now := time.Now()
		c.DeletedAt = &now
	}
	return nil
}

// ------------------------------------------------------------------
// Attachment
// ------------------------------------------------------------------

type memAttachmentRepository struct{ s *memStore }

func (r *memAttachmentRepository) Create(ctx context.Context, a *Attachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.s.attachments[a.ID] = &cp
	return nil
}

func (r *memAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.attachments[id]; ok && a.DeletedAt == nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memAttachmentRepository) FindByCardID(ctx context.Context, cardID string) ([]*Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var attachments []*Attachment
	for _, a := range r.s.attachments {
		if a.CardID == cardID && a.DeletedAt == nil {
			cp := *a
			attachments = append(attachments, &cp)
		}
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].CreatedAt.Before(attachments[j].CreatedAt) })
	return attachments, nil
}

func (r *memAttachmentRepository) Update(ctx context.Context, a *Attachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.attachments[a.ID]
	if !ok || existing.DeletedAt != nil {
		return nil
	}
	existing.FileName = a.FileName
	existing.URL = a.URL
	existing.UpdatedAt = time.Now()
	a.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memAttachmentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.attachments[id]; ok && a.DeletedAt == nil {
		now := time.Now()
		a.DeletedAt = &now
	}
	return nil
}

// ------------------------------------------------------------------
// Invitation
// ------------------------------------------------------------------

type memInvitationRepository struct{ s *memStore }

func (r *memInvitationRepository) Create(ctx context.Context, inv *Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now()
	cp := *inv
	r.s.invitations[inv.ID] = &cp
	return nil
}

func (r *memInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, inv := range r.s.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memInvitationRepository) FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var invitations []*Invitation
	for _, inv := range r.s.invitations {
		if inv.WorkspaceID == workspaceID {
			cp := *inv
			invitations = append(invitations, &cp)
		}
	}
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].CreatedAt.After(invitations[j].CreatedAt) })
	return invitations, nil
}

func (r *memInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]*Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	var invitations []*Invitation
	for _, inv := range r.s.invitations {
		if strings.EqualFold(inv.Email, email) && inv.Status == "pending" && inv.ExpiresAt.After(now) {
			cp := *inv
			invitations = append(invitations, &cp)
		}
	}
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].CreatedAt.After(invitations[j].CreatedAt) })
	return invitations, nil
}

func (r *memInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv, ok := r.s.invitations[id]; ok {
		inv.Status = status
	}
	return nil
}

func (r *memInvitationRepository) ExpirePending(ctx context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, inv := range r.s.invitations {
		if inv.Status == "pending" && inv.ExpiresAt.Before(now) {
			inv.Status = "expired"
			count++
		}
	}
	return count, nil
}

// ------------------------------------------------------------------
// Notification
// ------------------------------------------------------------------

type memNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func newMemNotificationRepository() *memNotificationRepository {
	return &memNotificationRepository{notifications: make(map[string]*Notification)}
}

func (r *memNotificationRepository) Create(ctx context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *memNotificationRepository) FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var notifications []*Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			cp := *n
			notifications = append(notifications, &cp)
		}
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].CreatedAt.After(notifications[j].CreatedAt) })
	return notifications, nil
}

func (r *memNotificationRepository) CountByUserID(ctx context.Context, userID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total, unread := 0, 0
	for _, n := range r.notifications {
		if n.UserID == userID {
			total++
			if !n.Read {
				unread++
			}
		}
	}
	return total, unread, nil
}

func (r *memNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[id]; ok {
		n.Read = true
	}
	return nil
}

func (r *memNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *memNotificationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notifications, id)
	return nil
}

func (r *memNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, n := range r.notifications {
		if n.CreatedAt.Before(olderThan) && (!readOnly || n.Read) {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}
