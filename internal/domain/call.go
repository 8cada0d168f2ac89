package domain

// Method names are namespaced by source. client.* methods are serviced by the
// client endpoint, agent-bound methods by the agent peer.
const (
	MethodClickButton = "client.click_button"
	MethodGreet       = "client.greet"
	MethodDOMElements = "dom_elements"
	MethodAgentAction = "agent.action"
)

// Call is one inbound invocation as handed to a handler. Payload encoding is
// method-specific: a JSON envelope or a bare string, agreed out of band.
// CallerIdentity is stamped by the transport, never by application code.
type Call struct {
	Method         string
	Payload        string
	CallerIdentity string
}
