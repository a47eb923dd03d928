// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

var (
	Failed        = failed(500, "Request failed")
	InternalError = failed(5000, "Internal error, please contact the administrator")

	BadRequest                    = failed(4000, "Bad request")
	RequestParameterParsingFailed = failed(4001, "Request parameter parsing failed")
	InvalidIdParameter            = failed(4002, "Invalid id parameter")
	NotFound                      = failed(4004, "Not found")
	RouteNotFound                 = failed(4005, "Route not found")

	Unauthorized         = failed(4401, "Unauthorized")
	AuthorizationEmpty   = failed(4404, "Authorization is empty")
	InvalidToken         = failed(4405, "Invalid token")
	TokenExpired         = failed(4407, "Token is expired")
	TokenFormatIncorrect = failed(4408, "Token format is incorrect")

	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")

	RequestTimeout = failed(5040, "Request timeout")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
