package services

import (
	"testing"
	"time"

	"github.com/gamepool/backend/internal/models"
)

func TestVoteCast_Basic(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 3)

	propSvc := NewProposalService(db)
	p, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	result, err := voteSvc.Cast(p.ID, members[1].ID)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	if result.CurrentVotes != 1 {
		t.Errorf("CurrentVotes = %d, expected 1", result.CurrentVotes)
	}
	if result.Transferred {
		t.Error("first vote reported as transferred")
	}
	if result.ProposalTitle != "Portal 2" {
		t.Errorf("ProposalTitle = %q, expected %q", result.ProposalTitle, "Portal 2")
	}
}

func TestVoteCast_ProposalNotFound(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 2)

	voteSvc := NewVoteService(db)
	_, err := voteSvc.Cast(999, members[0].ID)
	assertAppErrorCode(t, err, 404)
}

func TestVoteCast_OnlyProposedAcceptsVotes(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 3)

	for _, status := range []string{
		models.ProposalStatusVoted,
		models.ProposalStatusPurchased,
		models.ProposalStatusRejected,
	} {
		proposal := models.Proposal{
			Title:      "Portal 2 " + status,
			ProposerID: members[0].ID,
			Price:      20000,
			Status:     status,
			ProposedAt: time.Now().UTC(),
		}
		if err := db.Create(&proposal).Error; err != nil {
			t.Fatalf("failed to create proposal: %v", err)
		}

		voteSvc := NewVoteService(db)
		_, err := voteSvc.Cast(proposal.ID, members[1].ID)
		assertAppErrorCode(t, err, 422)
	}
}

func TestVoteCast_NoSelfVote(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 2)

	propSvc := NewProposalService(db)
	p, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	_, err = voteSvc.Cast(p.ID, members[0].ID)
	assertAppErrorCode(t, err, 403)
}

func TestVoteCast_DuplicateVoteConflicts(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 3)

	propSvc := NewProposalService(db)
	p, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	if _, err := voteSvc.Cast(p.ID, members[1].ID); err != nil {
		t.Fatalf("first Cast failed: %v", err)
	}
	_, err = voteSvc.Cast(p.ID, members[1].ID)
	assertAppErrorCode(t, err, 409)
}

func TestVoteCast_TransfersActiveVote(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 4)

	propSvc := NewProposalService(db)
	p1, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create p1 failed: %v", err)
	}
	p2, err := propSvc.Create(&CreateProposalRequest{Title: "Noita", Price: 18000}, members[1].ID)
	if err != nil {
		t.Fatalf("Create p2 failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	if _, err := voteSvc.Cast(p1.ID, members[2].ID); err != nil {
		t.Fatalf("Cast on p1 failed: %v", err)
	}

	result, err := voteSvc.Cast(p2.ID, members[2].ID)
	if err != nil {
		t.Fatalf("Cast on p2 failed: %v", err)
	}

	if !result.Transferred {
		t.Error("expected vote to be reported as transferred")
	}
	if result.PreviousTitle != "Portal 2" {
		t.Errorf("PreviousTitle = %q, expected %q", result.PreviousTitle, "Portal 2")
	}

	var p1Votes, p2Votes int64
	if err := db.Model(&models.Vote{}).Where("proposal_id = ?", p1.ID).Count(&p1Votes).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if err := db.Model(&models.Vote{}).Where("proposal_id = ?", p2.ID).Count(&p2Votes).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if p1Votes != 0 || p2Votes != 1 {
		t.Errorf("votes after transfer: p1=%d p2=%d, expected 0 and 1", p1Votes, p2Votes)
	}
}

func TestVoteCast_SettledVoteDoesNotBlockNewVote(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 4)

	propSvc := NewProposalService(db)
	p1, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create p1 failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	if _, err := voteSvc.Cast(p1.ID, members[2].ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	// The round resolves; the vote becomes historical.
	if err := db.Model(&models.Proposal{}).Where("id = ?", p1.ID).
		Update("status", models.ProposalStatusRejected).Error; err != nil {
		t.Fatalf("failed to reject: %v", err)
	}

	p2, err := propSvc.Create(&CreateProposalRequest{Title: "Noita", Price: 18000}, members[1].ID)
	if err != nil {
		t.Fatalf("Create p2 failed: %v", err)
	}

	result, err := voteSvc.Cast(p2.ID, members[2].ID)
	if err != nil {
		t.Fatalf("Cast after resolved round failed: %v", err)
	}
	if result.Transferred {
		t.Error("historical vote should not count as a transfer")
	}

	// The historical vote row is untouched.
	var p1Votes int64
	if err := db.Model(&models.Vote{}).Where("proposal_id = ?", p1.ID).Count(&p1Votes).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if p1Votes != 1 {
		t.Errorf("historical votes = %d, expected 1", p1Votes)
	}
}

func TestVoteRemove(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 3)

	propSvc := NewProposalService(db)
	p, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	voteSvc := NewVoteService(db)
	if _, err := voteSvc.Cast(p.ID, members[1].ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	removed, err := voteSvc.Remove(members[1].ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed.ProposalID != p.ID {
		t.Errorf("removed from proposal %d, expected %d", removed.ProposalID, p.ID)
	}

	_, err = voteSvc.Remove(members[1].ID)
	assertAppErrorCode(t, err, 404)
}

func TestMyVote(t *testing.T) {
	db := setupTestDB(t)
	members := seedMembers(t, db, 3)

	voteSvc := NewVoteService(db)
	result, err := voteSvc.MyVote(members[1].ID)
	if err != nil {
		t.Fatalf("MyVote failed: %v", err)
	}
	if result.HasVote {
		t.Error("HasVote = true with no votes cast")
	}

	propSvc := NewProposalService(db)
	p, err := propSvc.Create(&CreateProposalRequest{Title: "Portal 2", Price: 20000}, members[0].ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := voteSvc.Cast(p.ID, members[1].ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	result, err = voteSvc.MyVote(members[1].ID)
	if err != nil {
		t.Fatalf("MyVote failed: %v", err)
	}
	if !result.HasVote {
		t.Fatal("HasVote = false after casting")
	}
	if result.ProposalID != p.ID {
		t.Errorf("ProposalID = %d, expected %d", result.ProposalID, p.ID)
	}
	if result.TotalVotes != 1 {
		t.Errorf("TotalVotes = %d, expected 1", result.TotalVotes)
	}
}
