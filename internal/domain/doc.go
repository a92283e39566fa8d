// Package domain defines the core business entities of the planner:
// projects with recurring schedule specifications, the task records
// generated from them, and the users that own and work on them.
package domain
