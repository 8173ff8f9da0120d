package user

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
)

const RoleReadWrite = "readWrite"

type Role struct {
	Name     string
	Database string
}

func (r Role) document() bson.D {
	return bson.D{
		{Key: "role", Value: r.Name},
		{Key: "db", Value: r.Database},
	}
}

// Values are not validated, the server decides what an empty field means.
type Request struct {
	Username string
	Password string
	Database string
	Roles    []Role
}

func NewRequest(username, password, database string) *Request {
	return &Request{
		Username: username,
		Password: password,
		Database: database,
		Roles: []Role{
			{
				Name:     RoleReadWrite,
				Database: database,
			},
		},
	}
}

// Command renders the createUser command. It must be run against Database.
func (r *Request) Command() bson.D {
	roles := lo.Map(r.Roles, func(role Role, _ int) any {
		return role.document()
	})
	return bson.D{
		{Key: "createUser", Value: r.Username},
		{Key: "pwd", Value: r.Password},
		{Key: "roles", Value: bson.A(roles)},
	}
}
