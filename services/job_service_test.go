package services

import (
	"context"
	"math"
	"testing"

	"job-board-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestCreateJob(t *testing.T) {
	w := newWorld(t)
	svc := NewJobService(w.db)
	ctx := context.Background()

	job, err := svc.Create(ctx, w.poster, JobInput{
		Title:     "  Platform Engineer ",
		Company:   "Acme",
		Type:      "contract",
		Location:  "Berlin",
		SalaryMin: int64p(50000),
		SalaryMax: int64p(70000),
		Skills:    []string{"go", " ", "k8s"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", job.Title)
	assert.Equal(t, []string{"go", "k8s"}, []string(job.Skills))
	require.NotNil(t, job.Poster)
	assert.Equal(t, w.poster.UserID, job.Poster.ID)

	_, err = svc.Create(ctx, w.seeker, JobInput{Title: "x", Company: "y"})
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Create(ctx, w.poster, JobInput{Title: " ", Company: "y"})
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.Create(ctx, w.poster, JobInput{Title: "x", Company: "y", SalaryMin: int64p(10), SalaryMax: int64p(5)})
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestListJobsFiltersAndPages(t *testing.T) {
	w := newWorld(t)
	svc := NewJobService(w.db)
	ctx := context.Background()

	for _, in := range []JobInput{
		{Title: "Senior Go Engineer", Company: "Initech", Type: "full-time", Location: "Remote"},
		{Title: "Data Analyst", Company: "Globex", Type: "part-time", Location: "Lisbon"},
		{Title: "Backend Developer", Company: "Golang Shop", Type: "full-time", Location: "Remote EU"},
	} {
		_, err := svc.Create(ctx, w.poster, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, JobFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)

	gos, err := svc.List(ctx, JobFilter{Query: "GO"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, gos.Total, "Go Developer, Senior Go Engineer and Golang Shop")

	remote, err := svc.List(ctx, JobFilter{Type: "full-time", Location: "remote"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, remote.Total)

	paged, err := svc.List(ctx, JobFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, paged.TotalPages)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "Go Developer", paged.Items[0].Title, "oldest job lands on the last page")
	require.NotNil(t, paged.Items[0].Poster)

	beyond, err := svc.List(ctx, JobFilter{Page: math.MaxInt, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, beyond.Total)
	assert.Empty(t, beyond.Items)
}

func TestGetJobNotFound(t *testing.T) {
	svc := NewJobService(newTestDB(t))
	_, err := svc.Get(context.Background(), 99)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListByPoster(t *testing.T) {
	w := newWorld(t)
	svc := NewJobService(w.db)
	createJob(t, w.db, w.other, "Not mine")

	jobs, err := svc.ListByPoster(context.Background(), w.poster)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, w.job.ID, jobs[0].ID)

	_, err = svc.ListByPoster(context.Background(), w.seeker)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestDeleteJobRemovesApplicationsAndMessages(t *testing.T) {
	w := newWorld(t)
	svc := NewJobService(w.db)
	ctx := context.Background()

	app := applied(t, w)
	_, err := w.messages.Send(ctx, w.poster, app.ID, "hello")
	require.NoError(t, err)

	err = svc.Delete(ctx, w.other, w.job.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	require.NoError(t, svc.Delete(ctx, w.poster, w.job.ID))

	var jobs, apps, msgs int64
	require.NoError(t, w.db.Model(&models.Job{}).Count(&jobs).Error)
	require.NoError(t, w.db.Model(&models.Application{}).Count(&apps).Error)
	require.NoError(t, w.db.Model(&models.Message{}).Count(&msgs).Error)
	assert.Zero(t, jobs)
	assert.Zero(t, apps)
	assert.Zero(t, msgs)

	err = svc.Delete(ctx, w.poster, w.job.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
