package graph

import (
	"context"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"suggestboard/internal/app"
	"suggestboard/internal/model"
	"suggestboard/internal/pkg/jwtutil"
	"suggestboard/internal/pubsub"
	"suggestboard/internal/repository"
)

type memUserStore struct {
	users  []*model.User
	nextID uint
}

func (s *memUserStore) Create(ctx context.Context, user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	s.users = append(s.users, user)
	return nil
}

func (s *memUserStore) match(u *model.User, f repository.UserFilter) bool {
	if f.ID != nil && u.ID != *f.ID {
		return false
	}
	if f.Username != nil && u.Username != *f.Username {
		return false
	}
	if f.Email != nil && u.Email != *f.Email {
		return false
	}
	return true
}

func (s *memUserStore) FindOne(ctx context.Context, f repository.UserFilter) (*model.User, error) {
	for _, u := range s.users {
		if s.match(u, f) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) FindAll(ctx context.Context, f repository.UserFilter) ([]model.User, error) {
	var out []model.User
	for _, u := range s.users {
		if s.match(u, f) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memUserStore) Update(ctx context.Context, changes repository.UserChanges, f repository.UserFilter) (int64, error) {
	var affected int64
	for _, u := range s.users {
		if !s.match(u, f) {
			continue
		}
		if changes.Username != nil {
			u.Username = *changes.Username
		}
		affected++
	}
	return affected, nil
}

func (s *memUserStore) Destroy(ctx context.Context, f repository.UserFilter) (int64, error) {
	kept := s.users[:0]
	var affected int64
	for _, u := range s.users {
		if s.match(u, f) {
			affected++
			continue
		}
		kept = append(kept, u)
	}
	s.users = kept
	return affected, nil
}

type memBoardStore struct {
	boards []model.Board
	nextID uint
}

func (s *memBoardStore) Create(ctx context.Context, board *model.Board) error {
	s.nextID++
	board.ID = s.nextID
	s.boards = append(s.boards, *board)
	return nil
}

func (s *memBoardStore) FindAll(ctx context.Context, f repository.BoardFilter) ([]model.Board, error) {
	var out []model.Board
	for _, b := range s.boards {
		if f.ID != nil && b.ID != *f.ID {
			continue
		}
		if f.Owner != nil && b.Owner != *f.Owner {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type memSuggestionStore struct {
	suggestions []model.Suggestion
	nextID      uint
}

func (s *memSuggestionStore) Create(ctx context.Context, suggestion *model.Suggestion) error {
	s.nextID++
	suggestion.ID = s.nextID
	s.suggestions = append(s.suggestions, *suggestion)
	return nil
}

func (s *memSuggestionStore) FindAll(ctx context.Context, f repository.SuggestionFilter) ([]model.Suggestion, error) {
	var out []model.Suggestion
	for _, sg := range s.suggestions {
		if f.ID != nil && sg.ID != *f.ID {
			continue
		}
		if f.BoardID != nil && sg.BoardID != *f.BoardID {
			continue
		}
		if f.CreatorID != nil && sg.CreatorID != *f.CreatorID {
			continue
		}
		out = append(out, sg)
	}
	return out, nil
}

type fixture struct {
	users       *memUserStore
	boards      *memBoardStore
	suggestions *memSuggestionStore
	hub         *pubsub.Hub
	schema      graphql.Schema
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &memUserStore{}
	boards := &memBoardStore{}
	suggestions := &memSuggestionStore{}
	hub := pubsub.NewHub()

	resolver := &Resolver{
		Auth:        app.NewAuthService(users, hub, nil, "test-secret"),
		Users:       users,
		Boards:      boards,
		Suggestions: suggestions,
		Hub:         hub,
	}

	schema, err := resolver.Schema()
	require.NoError(t, err)

	return &fixture{
		users:       users,
		boards:      boards,
		suggestions: suggestions,
		hub:         hub,
		schema:      schema,
	}
}

func (f *fixture) do(t *testing.T, ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func (f *fixture) seedUser(t *testing.T, username, email string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: email, Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestRegisterMutation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	result := f.do(t, context.Background(), `
		mutation {
			register(username: "alice", email: "a@x.com", password: "secret123") {
				id
				username
				email
			}
		}`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})["register"].(map[string]interface{})
	require.Equal(t, "alice", data["username"])
	require.Equal(t, "a@x.com", data["email"])
	require.EqualValues(t, 1, data["id"])

	// The stored record must carry a hash, never the plaintext.
	stored := f.users.users[0]
	require.NotEqual(t, "secret123", stored.Password)
}

func TestLoginMutation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	reg := f.do(t, context.Background(), `
		mutation {
			register(username: "alice", email: "a@x.com", password: "secret123") { id }
		}`, nil)
	require.Empty(t, reg.Errors)

	t.Run("correct password", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			mutation { login(email: "a@x.com", password: "secret123") }`, nil)
		require.Empty(t, result.Errors)

		token := result.Data.(map[string]interface{})["login"].(string)
		require.NotEmpty(t, token)

		claims, ok := jwtutil.Verify("test-secret", token)
		require.True(t, ok)
		require.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			mutation { login(email: "a@x.com", password: "wrong") }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "Incorrect password", result.Errors[0].Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			mutation { login(email: "b@x.com", password: "anything") }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "User does not exist", result.Errors[0].Message)
	})
}

func TestMeQuery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.seedUser(t, "alice", "a@x.com")

	t.Run("anonymous", func(t *testing.T) {
		result := f.do(t, context.Background(), `{ me { id } }`, nil)
		require.Empty(t, result.Errors)
		require.Nil(t, result.Data.(map[string]interface{})["me"])
	})

	t.Run("authenticated", func(t *testing.T) {
		ctx := WithClaims(context.Background(), &jwtutil.Claims{UserID: user.ID, Username: user.Username})
		result := f.do(t, ctx, `{ me { id username } }`, nil)
		require.Empty(t, result.Errors)

		me := result.Data.(map[string]interface{})["me"].(map[string]interface{})
		require.Equal(t, "alice", me["username"])
	})

	t.Run("claim for a deleted user", func(t *testing.T) {
		ctx := WithClaims(context.Background(), &jwtutil.Claims{UserID: 999, Username: "ghost"})
		result := f.do(t, ctx, `{ me { id } }`, nil)
		require.Empty(t, result.Errors)
		require.Nil(t, result.Data.(map[string]interface{})["me"])
	})
}

func TestListQueries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice := f.seedUser(t, "alice", "a@x.com")
	bob := f.seedUser(t, "bob", "b@x.com")

	require.NoError(t, f.boards.Create(context.Background(), &model.Board{Name: "ideas", Owner: alice.ID}))
	require.NoError(t, f.boards.Create(context.Background(), &model.Board{Name: "bugs", Owner: bob.ID}))
	require.NoError(t, f.suggestions.Create(context.Background(), &model.Suggestion{Text: "dark mode", BoardID: 1, CreatorID: alice.ID}))
	require.NoError(t, f.suggestions.Create(context.Background(), &model.Suggestion{Text: "faster builds", BoardID: 1, CreatorID: bob.ID}))

	t.Run("allUsers", func(t *testing.T) {
		result := f.do(t, context.Background(), `{ allUsers { username } }`, nil)
		require.Empty(t, result.Errors)
		require.Len(t, result.Data.(map[string]interface{})["allUsers"].([]interface{}), 2)
	})

	t.Run("userBoards", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			query ($owner: Int!) { userBoards(owner: $owner) { name owner } }`,
			map[string]interface{}{"owner": int(alice.ID)})
		require.Empty(t, result.Errors)

		boards := result.Data.(map[string]interface{})["userBoards"].([]interface{})
		require.Len(t, boards, 1)
		require.Equal(t, "ideas", boards[0].(map[string]interface{})["name"])
	})

	t.Run("userSuggestions", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			query ($creatorId: Int!) { userSuggestions(creatorId: $creatorId) { text } }`,
			map[string]interface{}{"creatorId": int(bob.ID)})
		require.Empty(t, result.Errors)

		suggestions := result.Data.(map[string]interface{})["userSuggestions"].([]interface{})
		require.Len(t, suggestions, 1)
		require.Equal(t, "faster builds", suggestions[0].(map[string]interface{})["text"])
	})
}

func TestNestedProjections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice := f.seedUser(t, "alice", "a@x.com")
	require.NoError(t, f.boards.Create(context.Background(), &model.Board{Name: "ideas", Owner: alice.ID}))
	require.NoError(t, f.suggestions.Create(context.Background(), &model.Suggestion{Text: "dark mode", BoardID: 1, CreatorID: alice.ID}))

	result := f.do(t, context.Background(), `
		{
			allUsers {
				username
				boards {
					name
					suggestions {
						text
						creator { username }
					}
				}
				suggestions { text }
			}
		}`, nil)
	require.Empty(t, result.Errors)

	users := result.Data.(map[string]interface{})["allUsers"].([]interface{})
	require.Len(t, users, 1)

	user := users[0].(map[string]interface{})
	boards := user["boards"].([]interface{})
	require.Len(t, boards, 1)

	board := boards[0].(map[string]interface{})
	require.Equal(t, "ideas", board["name"])

	suggestions := board["suggestions"].([]interface{})
	require.Len(t, suggestions, 1)

	suggestion := suggestions[0].(map[string]interface{})
	require.Equal(t, "dark mode", suggestion["text"])
	require.Equal(t, "alice", suggestion["creator"].(map[string]interface{})["username"])

	require.Len(t, user["suggestions"].([]interface{}), 1)
}

func TestCreateBoardAndSuggestionMutations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := f.seedUser(t, "alice", "a@x.com")

	result := f.do(t, context.Background(), `
		mutation ($owner: Int!) {
			createBoard(name: "ideas", owner: $owner) { id name owner }
		}`, map[string]interface{}{"owner": int(alice.ID)})
	require.Empty(t, result.Errors)

	board := result.Data.(map[string]interface{})["createBoard"].(map[string]interface{})
	require.Equal(t, "ideas", board["name"])
	require.EqualValues(t, 1, board["id"])

	result = f.do(t, context.Background(), `
		mutation ($creatorId: Int!) {
			createSuggestion(text: "dark mode", boardId: 1, creatorId: $creatorId) { id text boardId creatorId }
		}`, map[string]interface{}{"creatorId": int(alice.ID)})
	require.Empty(t, result.Errors)

	suggestion := result.Data.(map[string]interface{})["createSuggestion"].(map[string]interface{})
	require.Equal(t, "dark mode", suggestion["text"])
	require.EqualValues(t, 1, suggestion["boardId"])
}

func TestUpdateAndDeleteUserMutations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", "a@x.com")
	f.seedUser(t, "bob", "b@x.com")

	result := f.do(t, context.Background(), `
		mutation { updateUser(username: "alice", newUsername: "alicia") }`, nil)
	require.Empty(t, result.Errors)
	require.EqualValues(t, 1, result.Data.(map[string]interface{})["updateUser"])
	require.Equal(t, "alicia", f.users.users[0].Username)

	result = f.do(t, context.Background(), `
		mutation { deleteUser(username: "bob") }`, nil)
	require.Empty(t, result.Errors)
	require.EqualValues(t, 1, result.Data.(map[string]interface{})["deleteUser"])
	require.Len(t, f.users.users, 1)

	result = f.do(t, context.Background(), `
		mutation { deleteUser(username: "nobody") }`, nil)
	require.Empty(t, result.Errors)
	require.EqualValues(t, 0, result.Data.(map[string]interface{})["deleteUser"])
}

func TestUserAddedSubscription(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := graphql.Subscribe(graphql.Params{
		Schema:        f.schema,
		RequestString: `subscription { userAdded { username email } }`,
		Context:       ctx,
	})

	// Give the subscription goroutine a moment to register before the
	// register mutation publishes.
	time.Sleep(50 * time.Millisecond)

	reg := f.do(t, context.Background(), `
		mutation {
			register(username: "alice", email: "a@x.com", password: "secret123") { id }
		}`, nil)
	require.Empty(t, reg.Errors)

	select {
	case result := <-results:
		require.Empty(t, result.Errors)
		payload := result.Data.(map[string]interface{})["userAdded"].(map[string]interface{})
		require.Equal(t, "alice", payload["username"])
		require.Equal(t, "a@x.com", payload["email"])
	case <-time.After(2 * time.Second):
		t.Fatal("no userAdded event delivered")
	}
}

// Ids are unsigned; a negative id must fail validation rather than widen
// the equality filter or crash the resolver.
func TestNegativeIDArguments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	alice := f.seedUser(t, "alice", "a@x.com")
	require.NoError(t, f.boards.Create(context.Background(), &model.Board{Name: "ideas", Owner: alice.ID}))
	require.NoError(t, f.boards.Create(context.Background(), &model.Board{Name: "bugs", Owner: alice.ID}))
	require.NoError(t, f.suggestions.Create(context.Background(), &model.Suggestion{Text: "dark mode", BoardID: 1, CreatorID: alice.ID}))

	t.Run("userBoards does not leak other owners", func(t *testing.T) {
		result := f.do(t, context.Background(), `{ userBoards(owner: -1) { name } }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "owner must not be negative", result.Errors[0].Message)
		require.Nil(t, result.Data.(map[string]interface{})["userBoards"])
	})

	t.Run("userSuggestions does not leak other creators", func(t *testing.T) {
		result := f.do(t, context.Background(), `{ userSuggestions(creatorId: -1) { text } }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "creatorId must not be negative", result.Errors[0].Message)
		require.Nil(t, result.Data.(map[string]interface{})["userSuggestions"])
	})

	t.Run("createBoard rejects instead of panicking", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			mutation { createBoard(name: "x", owner: -1) { id } }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "owner must not be negative", result.Errors[0].Message)
		require.Len(t, f.boards.boards, 2)
	})

	t.Run("createSuggestion rejects instead of panicking", func(t *testing.T) {
		result := f.do(t, context.Background(), `
			mutation { createSuggestion(text: "x", boardId: -1, creatorId: 1) { id } }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "boardId must not be negative", result.Errors[0].Message)
		require.Len(t, f.suggestions.suggestions, 1)
	})

	t.Run("deleteUser rejects a negative id", func(t *testing.T) {
		result := f.do(t, context.Background(), `mutation { deleteUser(id: -1) }`, nil)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "id must not be negative", result.Errors[0].Message)
		require.Len(t, f.users.users, 1)
	})
}

func TestSourceHelpers_UnexpectedType(t *testing.T) {
	t.Parallel()

	_, err := userFrom(42)
	require.ErrorContains(t, err, "unexpected user source int")

	_, err = boardFrom("nope")
	require.ErrorContains(t, err, "unexpected board source string")

	_, err = suggestionFrom(nil)
	require.ErrorContains(t, err, "unexpected suggestion source")
}
