package model

// NormalizeLegacyEvent rewrites a v0.3-style raw event into canonical
// v0.4 shape before validation:
//
//   - "data" is renamed to "payload" when "payload" is absent
//   - action "run.init" becomes "run.start" with payload.status
//     defaulting to "initialized"
//   - schema_version defaults to "0.3.0"
//
// The top-level input map is not mutated.
func NormalizeLegacyEvent(raw map[string]any) map[string]any {
	event := make(map[string]any, len(raw))
	for k, v := range raw {
		event[k] = v
	}

	if _, ok := event["payload"]; !ok {
		if data, ok := event["data"]; ok {
			event["payload"] = data
		}
	}
	delete(event, "data")

	if event["action"] == "run.init" {
		event["action"] = ActionRunStart
		payload, _ := event["payload"].(map[string]any)
		if payload == nil {
			payload = map[string]any{}
		}
		if _, ok := payload["status"]; !ok {
			payload["status"] = RunInitialized
		}
		event["payload"] = payload
	}

	if _, ok := event["schema_version"]; !ok {
		event["schema_version"] = "0.3.0"
	}
	return event
}

// NormalizeVerifyStatus rewrites the legacy "fail" verify status to the
// canonical "mismatch" on output.
func NormalizeVerifyStatus(status string) string {
	if status == "fail" {
		return VerifyMismatch
	}
	return status
}
