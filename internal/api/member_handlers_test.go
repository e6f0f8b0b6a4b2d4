package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shelfkeep/shelfkeep-server/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndListMembers(t *testing.T) {
	server, _ := setupTestServer(t)

	created := createMember(t, server, "Ann", "Lee")
	assert.NotEmpty(t, created.ID)

	status, env := doRequest(t, server, http.MethodGet, "/api/members", "")
	require.Equal(t, http.StatusOK, status)

	members := decodeData[[]dto.Member](t, env)
	require.Len(t, members, 1)
	assert.Equal(t, "Ann", members[0].FirstName)
	assert.Empty(t, members[0].ActiveLoans)
}

func TestAddMember_Validation(t *testing.T) {
	server, _ := setupTestServer(t)

	status, _ := doRequest(t, server, http.MethodPost, "/api/members", `{"firstName":"Ann"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListMembers_PopulatesLoanTitles(t *testing.T) {
	server, _ := setupTestServer(t)

	book := createBook(t, server, "Dune")
	ann := createMember(t, server, "Ann", "Lee")

	status, _ := doRequest(t, server, http.MethodPost, "/api/books/"+book.ID+"/lend",
		fmt.Sprintf(`{"memberId":%q}`, ann.ID))
	require.Equal(t, http.StatusOK, status)

	_, env := doRequest(t, server, http.MethodGet, "/api/members", "")
	members := decodeData[[]dto.Member](t, env)
	require.Len(t, members, 1)
	require.Len(t, members[0].ActiveLoans, 1)
	assert.Equal(t, "Dune", members[0].ActiveLoans[0].BookTitle)
	assert.Equal(t, book.ID, members[0].ActiveLoans[0].BookID)
}

func TestDeleteMember(t *testing.T) {
	server, _ := setupTestServer(t)

	book := createBook(t, server, "Dune")
	ann := createMember(t, server, "Ann", "Lee")

	_, _ = doRequest(t, server, http.MethodPost, "/api/books/"+book.ID+"/lend",
		fmt.Sprintf(`{"memberId":%q}`, ann.ID))

	status, env := doRequest(t, server, http.MethodDelete, "/api/members/"+ann.ID, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot delete member with active loans.", env.Error)

	_, _ = doRequest(t, server, http.MethodPost, "/api/books/"+book.ID+"/return", "")

	status, _ = doRequest(t, server, http.MethodDelete, "/api/members/"+ann.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, server, http.MethodDelete, "/api/members/"+ann.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
}
