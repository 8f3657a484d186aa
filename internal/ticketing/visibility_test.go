package ticketing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/continu8/backoffice/internal/domain"
)

func TestEffectiveInternal(t *testing.T) {
	assert.False(t, EffectiveInternal(true, domain.RoleClient))
	assert.False(t, EffectiveInternal(false, domain.RoleClient))
	assert.True(t, EffectiveInternal(true, domain.RoleSupport))
	assert.True(t, EffectiveInternal(true, domain.RoleAdmin))
	assert.False(t, EffectiveInternal(false, domain.RoleSales))
}

func TestVisibleComments_ClientNeverSeesInternal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		comments := make([]domain.Comment, rng.Intn(15))
		internal := 0
		for i := range comments {
			comments[i] = domain.Comment{ID: fmt.Sprintf("c-%d", i), IsInternal: rng.Intn(2) == 0}
			if comments[i].IsInternal {
				internal++
			}
		}

		clientView := VisibleComments(comments, domain.RoleClient)
		for _, c := range clientView {
			assert.False(t, c.IsInternal)
		}
		assert.Len(t, clientView, len(comments)-internal)

		assert.Equal(t, comments, VisibleComments(comments, domain.RoleSupport))
	}
}

func TestVisibleComments_KeepsOrder(t *testing.T) {
	comments := []domain.Comment{
		{ID: "1"}, {ID: "2", IsInternal: true}, {ID: "3"},
	}
	got := VisibleComments(comments, domain.RoleClient)
	assert.Equal(t, []string{"1", "3"}, []string{got[0].ID, got[1].ID})
}

func TestNotifiesCreator(t *testing.T) {
	assert.True(t, NotifiesCreator(domain.Comment{}))
	assert.False(t, NotifiesCreator(domain.Comment{IsInternal: true}))
}
