// Package graphql serves the session operations as a GraphQL schema.
package graphql

const schemaSDL = `
schema {
	query: Query
	mutation: Mutation
}

type Query {
	me: User
	validateToken(token: String!): TokenValidation!
}

type Mutation {
	login(email: String!, password: String!): AuthPayload!
	register(input: RegisterInput!): AuthPayload!
	refreshToken(token: String!): AuthPayload!
	logout: Boolean!
	changePassword(currentPassword: String!, newPassword: String!): PasswordChangeResult!
}

input RegisterInput {
	username: String!
	email: String!
	password: String!
	displayName: String
	avatarUrl: String
}

type User {
	id: ID!
	username: String!
	email: String!
	displayName: String!
	avatarUrl: String
	createdAt: String!
}

type AuthPayload {
	token: String!
	refreshToken: String!
	user: User!
}

type TokenValidation {
	valid: Boolean!
	user: User
	reason: String
}

type PasswordChangeResult {
	success: Boolean!
	message: String!
}
`
