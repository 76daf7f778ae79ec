package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
)

func TestScore_Rules(t *testing.T) {
	client := entity.Client{FullName: "John Mukasa", PhoneNumber: "0700123456", IDNumber: "CM123"}

	tests := []struct {
		name      string
		app       entity.LoanApplication
		wantScore float64
		wantType  MatchType
	}{
		{
			name:      "exact name wins over phone",
			app:       entity.LoanApplication{ClientName: "Mr. John  Mukasa", PhoneNumber: "+256700123456"},
			wantScore: 100,
			wantType:  MatchExact,
		},
		{
			name:      "phone match across formats",
			app:       entity.LoanApplication{ClientName: "Mukasa John", PhoneNumber: "+256 700 123 456"},
			wantScore: 95,
			wantType:  MatchPhone,
		},
		{
			name:      "id match",
			app:       entity.LoanApplication{ClientName: "Someone Else", IDNumber: " cm123 "},
			wantScore: 95,
			wantType:  MatchID,
		},
		{
			name:      "fuzzy name",
			app:       entity.LoanApplication{ClientName: "Jon Mukasa"},
			wantScore: (1 - 1.0/11) * 90,
			wantType:  MatchFuzzy,
		},
		{
			name:      "partial containment",
			app:       entity.LoanApplication{ClientName: "John Mukasa Kato Ssemwanga"},
			wantScore: 75,
			wantType:  MatchPartial,
		},
		{
			name:      "no match",
			app:       entity.LoanApplication{ClientName: "Grace Akello", PhoneNumber: "0772000000"},
			wantScore: 0,
			wantType:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, kind := Score(client, tt.app)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantType, kind)
		})
	}
}

func TestScore_EmptyFieldsNeverMatch(t *testing.T) {
	client := entity.Client{}
	app := entity.LoanApplication{}

	score, kind := Score(client, app)
	assert.Zero(t, score)
	assert.Empty(t, kind)
}

func TestMatchClientToApplications_PhoneScenario(t *testing.T) {
	client := entity.Client{FullName: "John Mukasa", PhoneNumber: "0700123456"}
	apps := []entity.LoanApplication{
		{ID: 1, ClientName: "John Mukasa", PhoneNumber: "+256700123456"},
		{ID: 2, ClientName: "Unrelated Person", PhoneNumber: "+256700123456"},
	}

	ranked := Rank(client, apps)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(1), ranked[0].Application.ID)
	assert.Equal(t, int64(2), ranked[1].Application.ID)
	assert.Equal(t, 95.0, ranked[1].Score)
	assert.Equal(t, MatchPhone, ranked[1].MatchType)

	assert.Equal(t, "256700123456", NormalizePhone(client.PhoneNumber))
	assert.Equal(t, "256700123456", NormalizePhone(apps[0].PhoneNumber))
}

func TestRank_FiltersSortsAndDedupes(t *testing.T) {
	client := entity.Client{FullName: "Grace Akello", PhoneNumber: "0772111222"}
	apps := []entity.LoanApplication{
		{ID: 10, ClientName: "Grace Akello Achieng"},                // partial
		{ID: 11, ClientName: "Peter Okot"},                          // excluded
		{ID: 12, ClientName: "G. Akello", PhoneNumber: "772111222"}, // phone
		{ID: 13, ClientName: "Grace Akelo"},                         // fuzzy
		{ID: 12, ClientName: "G. Akello", PhoneNumber: "772111222"}, // duplicate
		{ID: 14, ClientName: "Grace Akello"},                        // exact
	}

	ranked := Rank(client, apps)

	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Application.ID
	}
	assert.Equal(t, []int64{14, 12, 13, 10}, ids)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.Score, MinScore)
	}
}

func TestRank_StableTies(t *testing.T) {
	client := entity.Client{FullName: "Grace Akello"}
	apps := []entity.LoanApplication{
		{ID: 3, ClientName: "Grace Akello"},
		{ID: 1, ClientName: "grace akello"},
		{ID: 2, ClientName: "GRACE AKELLO"},
	}

	got := MatchClientToApplications(client, apps)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)
}

func TestMatchClientToApplications_Idempotent(t *testing.T) {
	client := entity.Client{FullName: "John Mukasa", PhoneNumber: "0700123456", IDNumber: "CM1"}
	apps := []entity.LoanApplication{
		{ID: 1, ClientName: "Jon Mukasa"},
		{ID: 2, ClientName: "John Mukasa"},
		{ID: 3, ClientName: "Other", IDNumber: "cm1"},
		{ID: 4, ClientName: "Nobody"},
	}

	first := MatchClientToApplications(client, apps)
	second := MatchClientToApplications(client, apps)
	assert.Equal(t, first, second)
}

func TestMatchClientToApplications_NoMatches(t *testing.T) {
	got := MatchClientToApplications(entity.Client{FullName: "Nobody Here"}, []entity.LoanApplication{
		{ID: 1, ClientName: "Somebody Else"},
	})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
