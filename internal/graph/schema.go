package graph

import (
	"fmt"
	"log"

	"github.com/graphql-go/graphql"

	"suggestboard/internal/app"
	"suggestboard/internal/model"
	"suggestboard/internal/repository"
)

// Schema builds the executable schema over the root resolver. Type
// definitions mirror the three entities; relations resolve lazily through
// the data-access layer.
func (r *Resolver) Schema() (graphql.Schema, error) {
	var userType *graphql.Object
	var boardType *graphql.Object
	var suggestionType *graphql.Object

	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return user.ID, nil
					},
				},
				"username": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return user.Username, nil
					},
				},
				"email": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return user.Email, nil
					},
				},
				"boards": &graphql.Field{
					Type: graphql.NewList(boardType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return r.Boards.FindAll(p.Context, repository.BoardFilter{Owner: &user.ID})
					},
				},
				"suggestions": &graphql.Field{
					Type: graphql.NewList(suggestionType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return r.Suggestions.FindAll(p.Context, repository.SuggestionFilter{CreatorID: &user.ID})
					},
				},
			}
		}),
	})

	boardType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Board",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						board, err := boardFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return board.ID, nil
					},
				},
				"name": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						board, err := boardFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return board.Name, nil
					},
				},
				"owner": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						board, err := boardFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return board.Owner, nil
					},
				},
				"suggestions": &graphql.Field{
					Type: graphql.NewList(suggestionType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						board, err := boardFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return r.Suggestions.FindAll(p.Context, repository.SuggestionFilter{BoardID: &board.ID})
					},
				},
			}
		}),
	})

	suggestionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Suggestion",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						suggestion, err := suggestionFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return suggestion.ID, nil
					},
				},
				"text": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						suggestion, err := suggestionFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return suggestion.Text, nil
					},
				},
				"boardId": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						suggestion, err := suggestionFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return suggestion.BoardID, nil
					},
				},
				"creatorId": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						suggestion, err := suggestionFrom(p.Source)
						if err != nil {
							return nil, err
						}
						return suggestion.CreatorID, nil
					},
				},
				"creator": &graphql.Field{
					Type: userType,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						suggestion, err := suggestionFrom(p.Source)
						if err != nil {
							return nil, err
						}
						creator, err := r.Users.FindOne(p.Context, repository.UserFilter{ID: &suggestion.CreatorID})
						if err != nil {
							return nil, err
						}
						if creator == nil {
							return nil, nil
						}
						return creator, nil
					},
				},
			}
		}),
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims := ClaimsFrom(p.Context)
					if claims == nil {
						return nil, nil
					}
					user, err := r.Auth.CurrentUser(p.Context, claims)
					if err != nil {
						return nil, err
					}
					if user == nil {
						return nil, nil
					}
					return user, nil
				},
			},
			"allUsers": &graphql.Field{
				Type: graphql.NewList(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.allUsers(p)
				},
			},
			"userBoards": &graphql.Field{
				Type: graphql.NewList(boardType),
				Args: graphql.FieldConfigArgument{
					"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := requireUint(p.Args, "owner")
					if err != nil {
						return nil, err
					}
					return r.Boards.FindAll(p.Context, repository.BoardFilter{Owner: &owner})
				},
			},
			"userSuggestions": &graphql.Field{
				Type: graphql.NewList(suggestionType),
				Args: graphql.FieldConfigArgument{
					"creatorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					creatorID, err := requireUint(p.Args, "creatorId")
					if err != nil {
						return nil, err
					}
					return r.Suggestions.FindAll(p.Context, repository.SuggestionFilter{CreatorID: &creatorID})
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"updateUser": &graphql.Field{
				Type: graphql.Int,
				Args: graphql.FieldConfigArgument{
					"username":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newUsername": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					username := p.Args["username"].(string)
					newUsername := p.Args["newUsername"].(string)
					affected, err := r.Users.Update(p.Context,
						repository.UserChanges{Username: &newUsername},
						repository.UserFilter{Username: &username},
					)
					if err != nil {
						return nil, err
					}
					r.invalidateUserList(p)
					return affected, nil
				},
			},
			"deleteUser": &graphql.Field{
				Type: graphql.Int,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.Int},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := optUint(p.Args, "id")
					if err != nil {
						return nil, err
					}
					filter := repository.UserFilter{
						ID:       id,
						Username: argString(p.Args, "username"),
						Email:    argString(p.Args, "email"),
					}
					affected, err := r.Users.Destroy(p.Context, filter)
					if err != nil {
						return nil, err
					}
					r.invalidateUserList(p)
					return affected, nil
				},
			},
			"createBoard": &graphql.Field{
				Type: boardType,
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := requireUint(p.Args, "owner")
					if err != nil {
						return nil, err
					}
					board := &model.Board{
						Name:  p.Args["name"].(string),
						Owner: owner,
					}
					if err := r.Boards.Create(p.Context, board); err != nil {
						return nil, err
					}
					return board, nil
				},
			},
			"createSuggestion": &graphql.Field{
				Type: suggestionType,
				Args: graphql.FieldConfigArgument{
					"text":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"boardId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"creatorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					boardID, err := requireUint(p.Args, "boardId")
					if err != nil {
						return nil, err
					}
					creatorID, err := requireUint(p.Args, "creatorId")
					if err != nil {
						return nil, err
					}
					suggestion := &model.Suggestion{
						Text:      p.Args["text"].(string),
						BoardID:   boardID,
						CreatorID: creatorID,
					}
					if err := r.Suggestions.Create(p.Context, suggestion); err != nil {
						return nil, err
					}
					return suggestion, nil
				},
			},
			"register": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, err := r.Auth.Register(p.Context, app.RegisterInput{
						Username: p.Args["username"].(string),
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
					if err != nil {
						return nil, err
					}
					r.invalidateUserList(p)
					return user, nil
				},
			},
			"login": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Auth.Login(p.Context,
						p.Args["email"].(string),
						p.Args["password"].(string),
					)
				},
			},
		},
	})

	subscriptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"userAdded": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source, nil
				},
				Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
					src := r.Hub.Subscribe(p.Context, app.TopicUserAdded)
					out := make(chan interface{})
					go func() {
						defer close(out)
						for payload := range src {
							select {
							case out <- payload:
							case <-p.Context.Done():
								return
							}
						}
					}()
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        queryType,
		Mutation:     mutationType,
		Subscription: subscriptionType,
	})
}

func (r *Resolver) allUsers(p graphql.ResolveParams) (interface{}, error) {
	if r.UserCache != nil {
		users, hit, err := r.UserCache.Get(p.Context)
		if err != nil {
			log.Printf("user list cache read failed: %v", err)
		} else if hit {
			return users, nil
		}
	}

	users, err := r.Users.FindAll(p.Context, repository.UserFilter{})
	if err != nil {
		return nil, err
	}

	if r.UserCache != nil {
		if err := r.UserCache.Set(p.Context, users); err != nil {
			log.Printf("user list cache write failed: %v", err)
		}
	}
	return users, nil
}

func (r *Resolver) invalidateUserList(p graphql.ResolveParams) {
	if r.UserCache == nil {
		return
	}
	if err := r.UserCache.Invalidate(p.Context); err != nil {
		log.Printf("user list cache invalidate failed: %v", err)
	}
}

func userFrom(src interface{}) (*model.User, error) {
	switch u := src.(type) {
	case *model.User:
		return u, nil
	case model.User:
		return &u, nil
	}
	return nil, fmt.Errorf("unexpected user source %T", src)
}

func boardFrom(src interface{}) (*model.Board, error) {
	switch b := src.(type) {
	case *model.Board:
		return b, nil
	case model.Board:
		return &b, nil
	}
	return nil, fmt.Errorf("unexpected board source %T", src)
}

func suggestionFrom(src interface{}) (*model.Suggestion, error) {
	switch s := src.(type) {
	case *model.Suggestion:
		return s, nil
	case model.Suggestion:
		return &s, nil
	}
	return nil, fmt.Errorf("unexpected suggestion source %T", src)
}

// requireUint reads a non-null Int argument. Ids are unsigned: a negative
// value is a validation failure, never treated as absent.
func requireUint(args map[string]interface{}, name string) (uint, error) {
	n, ok := args[name].(int)
	if !ok {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return uint(n), nil
}

// optUint reads an optional Int argument; nil means the caller omitted it.
func optUint(args map[string]interface{}, name string) (*uint, error) {
	if _, ok := args[name]; !ok {
		return nil, nil
	}
	v, err := requireUint(args, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func argString(args map[string]interface{}, name string) *string {
	raw, ok := args[name]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}
