package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelatedRefColumnValue(t *testing.T) {
	v, err := ApplicationRef(12).Value()
	require.NoError(t, err)
	assert.Equal(t, "application:12", v)

	v, err = RelatedRef{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var r RelatedRef
	require.NoError(t, r.Scan([]byte("message:3")))
	assert.Equal(t, MessageRef(3), r)

	require.NoError(t, r.Scan(nil))
	assert.True(t, r.IsZero())

	assert.Error(t, r.Scan("user:1"))
	assert.Error(t, r.Scan("job:0"))
	assert.Error(t, r.Scan("job"))
	assert.Error(t, r.Scan(42))
}

func TestRelatedRefJSON(t *testing.T) {
	b, err := json.Marshal(JobRef(4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"job","id":4}`, string(b))

	b, err = json.Marshal(RelatedRef{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	var r RelatedRef
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"application","id":8}`), &r))
	assert.Equal(t, ApplicationRef(8), r)

	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.True(t, r.IsZero())
}

func TestNotificationTypeValid(t *testing.T) {
	for _, nt := range []NotificationType{
		NotificationApplicationStatus,
		NotificationMessageReceived,
		NotificationJobPosted,
		NotificationApplicationReceived,
	} {
		assert.True(t, nt.Valid(), nt)
	}
	assert.False(t, NotificationType("promo").Valid())
}

func TestUserProjections(t *testing.T) {
	var nobody *User
	assert.Equal(t, "Unknown User", nobody.DisplayName())
	assert.Nil(t, nobody.Summary())

	u := &User{ID: 1, FirstName: " Sam ", LastName: "Seeker", Email: "sam@example.com", Role: RoleJobSeeker}
	assert.Equal(t, "Sam Seeker", u.DisplayName())

	p := u.ApplicantProfile()
	require.NotNil(t, p)
	assert.NotNil(t, p.Skills)
	assert.Empty(t, p.Skills)

	assert.True(t, ApplicationAccepted.IsTerminal())
	assert.False(t, ApplicationPending.IsTerminal())
	assert.False(t, Role("admin").Valid())
}
