// Package protocol defines the JSON messages exchanged between a whistle
// client and server.
//
// # Outbound
//
// The client sends single objects:
//
//	{"type":"join","requestId":"…","program":"counter","params":{},"dom":[…],"uri":"/"}
//	{"type":"leave","program":"p1"}
//	{"type":"event","program":"p1","handler":"0.1.click","args":["5"]}
//	{"type":"msg","program":"p1","payload":…}
//	{"type":"route","program":"p1","uri":"/next"}
//
// # Inbound
//
// The server sends one object or an array of objects, dispatched in order:
//
//	{"requestId":"…","programId":"p1"}                  join ack
//	{"type":"render","program":"p1","dom_patches":[…]}  patch batch
//	{"type":"msg","program":"p1","payload":[tag, …]}    program message
//
// # Patches
//
// A patch is a JSON array [op, path, payload...]. Path is an array of
// child indexes from the program root. Remount carries two payload slots:
//
//	[1, [0, 2], "text"]                    replace_text
//	[2, [1], ["li", {}, []]]               add_node
//	[3, [1], ["text", "", "5"]]            replace_node
//	[4, [3]]                               remove_node
//	[5, [0], ["value", "1"]]               set_attribute
//	[6, [0], "disabled"]                   remove_attribute
//	[7, [0], {"event": "click"}]           add_event_handler
//	[8, [0], "click"]                      remove_event_handler
//	[9, [2], "modal", {}]                  remount
package protocol
