package service

// HealthStateOf exposes the state fold to the external test package.
var HealthStateOf = healthState
