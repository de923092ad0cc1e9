// Package testbed is an in-process fake RESP v1 server used to exercise
// redisconn without shelling out to a real redis-server binary.
package testbed
